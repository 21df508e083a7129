package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Cart     CartConfig
	Checkout CheckoutConfig
	Stripe   StripeConfig
	Cosmic   CosmicConfig
	Resend   ResendConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FOODDASH_APP_ENV" required:"true"`
	Port         string `envconfig:"FOODDASH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FOODDASH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FOODDASH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FOODDASH_DB_DSN"`
	Driver string `envconfig:"FOODDASH_DB_DRIVER" default:"sqlite"`

	MaxOpenConns    int           `envconfig:"FOODDASH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FOODDASH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FOODDASH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOODDASH_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"FOODDASH_DB_AUTO_MIGRATE" default:"true"`
}

func (db DBConfig) validate() error {
	switch db.Driver {
	case DBDriverPostgres:
		if db.DSN == "" {
			return fmt.Errorf("%s is required when the postgres driver is selected", EnvDBDSN)
		}
		return nil
	case DBDriverSQLite:
		return nil
	default:
		return fmt.Errorf("unsupported database driver %q", db.Driver)
	}
}

// SQLitePath returns the on-disk database location for the sqlite driver.
func (db DBConfig) SQLitePath() string {
	if db.DSN != "" {
		return db.DSN
	}
	return "fooddash.db"
}

type RedisConfig struct {
	URL          string        `envconfig:"FOODDASH_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"FOODDASH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FOODDASH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FOODDASH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOODDASH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FOODDASH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CartConfig struct {
	StorageKey      string        `envconfig:"FOODDASH_CART_STORAGE_KEY" default:"fooddash-cart"`
	TTL             time.Duration `envconfig:"FOODDASH_CART_TTL" default:"720h"`
	MaxItemQuantity int           `envconfig:"FOODDASH_CART_MAX_ITEM_QUANTITY" default:"10"`
}

type CheckoutConfig struct {
	TaxRate            decimal.Decimal `envconfig:"FOODDASH_CHECKOUT_TAX_RATE" default:"0.0825"`
	DefaultDeliveryFee decimal.Decimal `envconfig:"FOODDASH_CHECKOUT_DEFAULT_DELIVERY_FEE" default:"2.99"`
	Currency           string          `envconfig:"FOODDASH_CHECKOUT_CURRENCY" default:"usd"`
	MinimumChargeCents int64           `envconfig:"FOODDASH_CHECKOUT_MINIMUM_CHARGE_CENTS" default:"50"`
	CallTimeout        time.Duration   `envconfig:"FOODDASH_CHECKOUT_CALL_TIMEOUT" default:"30s"`
}

type StripeConfig struct {
	APIKey string `envconfig:"FOODDASH_STRIPE_API_KEY"`
	Env    string `envconfig:"FOODDASH_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CosmicConfig struct {
	BucketSlug string        `envconfig:"FOODDASH_COSMIC_BUCKET_SLUG" required:"true"`
	ReadKey    string        `envconfig:"FOODDASH_COSMIC_READ_KEY" required:"true"`
	WriteKey   string        `envconfig:"FOODDASH_COSMIC_WRITE_KEY"`
	BaseURL    string        `envconfig:"FOODDASH_COSMIC_BASE_URL" default:"https://api.cosmicjs.com/v3"`
	Timeout    time.Duration `envconfig:"FOODDASH_COSMIC_TIMEOUT" default:"10s"`
}

type ResendConfig struct {
	APIKey    string `envconfig:"FOODDASH_RESEND_API_KEY"`
	FromEmail string `envconfig:"FOODDASH_RESEND_FROM_EMAIL" default:"orders@fooddash.app"`
	ReplyTo   string `envconfig:"FOODDASH_RESEND_REPLY_TO"`
}
