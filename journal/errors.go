package journal

import "errors"

var (
	// ErrInvalidInput is returned before any provider call when the request is unusable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedResponse means the provider answered but the text did not match the result record exactly.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrProviderUnavailable covers network failures, timeouts, quota and provider-side errors.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// IsRetryable reports whether a caller may reasonably retry the request with backoff.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}

// ErrorKind returns a short stable name for the error class, or "" for nil.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrProviderUnavailable):
		return "provider_unavailable"
	default:
		return "internal"
	}
}
