package errors

import "errors"

// Retryable reports whether a failure is transient and worth retrying by the
// caller. Configuration and validation errors are never retryable. Network
// errors and API errors with 429 or 5xx status codes are. The core itself
// never retries; this classification exists for callers implementing their
// own retry policy.
func Retryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	switch e.Kind {
	case KindNetwork:
		return true
	case KindAPI:
		return e.StatusCode == 429 || e.StatusCode >= 500
	default:
		return false
	}
}
