// Package types holds the wire shapes shared by every storefront endpoint.
package types

// SuccessEnvelope wraps every successful response body, so cart, catalog,
// and checkout payloads all arrive under the same "data" key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public face of a failure. Code is a stable machine-readable
// string from the error taxonomy; Details carries field-level validation
// errors when present.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError for transport.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
