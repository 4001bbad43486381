package response

import (
	"errors"
	"net/http"

	"crm-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// statusFor maps a service error to the HTTP status it should be
// reported with. Unrecognized errors are treated as internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrInactiveAccount):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrTransactionFailure):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// AbortError writes the standard error envelope for a service error.
func AbortError(c *gin.Context, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.JSON(code, Error(code, msg))
}
