package domain

import (
	"fmt"
	"net/http"
)

// ProviderError is a failed call to a remote embedding or generation provider.
// It unwraps to the sentinel matching its status code so callers can use errors.Is.
type ProviderError struct {
	// Provider names the adapter, e.g. "dashscope".
	Provider string

	// StatusCode is the HTTP status, or 0 for transport failures.
	StatusCode int

	// Message is the provider's error message.
	Message string

	// Err is the underlying transport error, if any.
	Err error
}

// Error implements error.
func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Provider, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Unwrap returns the matching sentinel and the transport error.
func (e *ProviderError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Temporary reports whether the call may succeed if repeated.
func (e *ProviderError) Temporary() bool {
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode == http.StatusRequestTimeout:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

func (e *ProviderError) sentinel() error {
	switch {
	case e.StatusCode == 0:
		return ErrProviderUnavailable
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return ErrAuthInvalid
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusGatewayTimeout:
		return ErrProviderTimeout
	case e.StatusCode >= 500:
		return ErrProviderUnavailable
	case e.StatusCode >= 400:
		return ErrInvalidInput
	default:
		return nil
	}
}
