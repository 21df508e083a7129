package config

const (
	EnvPrefix = "FOODDASH"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	EnvAppEnv   = "FOODDASH_APP_ENV"
	EnvPort     = "FOODDASH_APP_PORT"
	EnvDBDSN    = "FOODDASH_DB_DSN"
	EnvDBDriver = "FOODDASH_DB_DRIVER"
	EnvRedisURL = "FOODDASH_REDIS_URL"

	EnvCosmicBucketSlug = "FOODDASH_COSMIC_BUCKET_SLUG"
	EnvCosmicReadKey    = "FOODDASH_COSMIC_READ_KEY"

	EnvStripeAPIKey = "FOODDASH_STRIPE_API_KEY"
	EnvResendAPIKey = "FOODDASH_RESEND_API_KEY"
)
