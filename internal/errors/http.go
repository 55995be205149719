package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the JSON shape of an error returned to HTTP clients.
type Response struct {
	Error     string `json:"error"`
	Kind      Kind   `json:"kind,omitempty"`
	Backend   string `json:"backend,omitempty"`
	Retryable bool   `json:"retryable"`
}

// AbortWithError writes a standardized JSON error response and aborts the
// request. Error kinds map to HTTP status codes; unknown errors become 500s.
func AbortWithError(c *gin.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, Response{Error: err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch e.Kind {
	case KindConfiguration:
		status = http.StatusPreconditionFailed
	case KindValidation:
		status = http.StatusBadRequest
	case KindNetwork:
		status = http.StatusBadGateway
	case KindAPI:
		status = http.StatusBadGateway
	case KindGeneration:
		status = http.StatusUnprocessableEntity
	}

	c.AbortWithStatusJSON(status, Response{
		Error:     e.Error(),
		Kind:      e.Kind,
		Backend:   e.Backend,
		Retryable: Retryable(e),
	})
}
