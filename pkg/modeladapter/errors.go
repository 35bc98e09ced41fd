package modeladapter

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. Callers should use errors.Is/errors.As; the typed errors
// below unwrap to these. Option validation failures are reported as
// *options.ValidationError.
var (
	ErrMissingKey  = errors.New("no key found")
	ErrOptionsType = errors.New("options belong to a different model")
)

// MissingCredentialError reports that no API key could be resolved for a model.
type MissingCredentialError struct {
	KeyName string // Name of the stored key, e.g. "cohere".
	EnvVar  string // Environment variable consulted, e.g. "COHERE_API_KEY".
}

// Error implements error.
func (e *MissingCredentialError) Error() string {
	if e.EnvVar == "" {
		return fmt.Sprintf("%s: set it with 'keys set %s'", ErrMissingKey, e.KeyName)
	}
	return fmt.Sprintf("%s: set it with 'keys set %s' or the %s environment variable",
		ErrMissingKey, e.KeyName, e.EnvVar)
}

// Unwrap returns ErrMissingKey.
func (e *MissingCredentialError) Unwrap() error { return ErrMissingKey }

// ServiceError is any failure surfaced by the external API call: transport,
// non-2xx status, or an undecodable body. Models return it unmodified.
type ServiceError struct {
	Op         string        // Failed step: "do request", "status", "decode response", ...
	StatusCode int           // HTTP status, zero for transport failures.
	Message    string        // API-provided message for non-2xx responses.
	RetryAfter time.Duration // Parsed Retry-After on 429 responses.
	Err        error         // Underlying error, nil for status failures.
}

// Error implements error.
func (e *ServiceError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.RetryAfter > 0:
		return fmt.Sprintf("unexpected status %d (retry after %s): %s", e.StatusCode, e.RetryAfter, e.Message)
	default:
		return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
	}
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error { return e.Err }

// RateLimited reports whether the API answered 429 Too Many Requests.
func (e *ServiceError) RateLimited() bool { return e.StatusCode == 429 }

// Compile-time checks.
var (
	_ error = (*MissingCredentialError)(nil)
	_ error = (*ServiceError)(nil)
)
