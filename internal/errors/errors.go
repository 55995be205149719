package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure into one of the error categories the service
// reports to callers. Lower-level transport and parse failures are always
// converted into one of these kinds before they leave a component.
type Kind string

const (
	// KindConfiguration covers missing credentials, endpoints, or model
	// selection. No network call is attempted for these.
	KindConfiguration Kind = "configuration_error"
	// KindNetwork covers timeouts and connection failures.
	KindNetwork Kind = "network_error"
	// KindAPI covers non-success responses from a backend.
	KindAPI Kind = "api_error"
	// KindValidation covers malformed local input.
	KindValidation Kind = "validation_error"
	// KindGeneration covers backends that responded successfully but
	// produced empty or unusable text after normalization.
	KindGeneration Kind = "generation_error"
)

// Error is the standardized error type for all failures surfaced by the
// title generation core.
type Error struct {
	Kind       Kind
	Backend    string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Backend != "" && e.StatusCode != 0:
		return fmt.Sprintf("%s: backend %s returned %d: %s", e.Kind, e.Backend, e.StatusCode, e.Message)
	case e.Backend != "":
		return fmt.Sprintf("%s: backend %s: %s", e.Kind, e.Backend, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Configuration creates a configuration error.
func Configuration(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// Network creates a network error for a backend, wrapping the transport error.
func Network(backend string, err error) *Error {
	return &Error{Kind: KindNetwork, Backend: backend, Message: err.Error(), Err: err}
}

// API creates an API error carrying the backend id and HTTP status code.
func API(backend string, statusCode int, message string) *Error {
	return &Error{Kind: KindAPI, Backend: backend, StatusCode: statusCode, Message: message}
}

// Validation creates a validation error for malformed local input.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Generation creates a generation error for unusable backend output.
func Generation(backend, message string) *Error {
	return &Error{Kind: KindGeneration, Backend: backend, Message: message}
}

// KindOf returns the kind of err, or an empty Kind if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
