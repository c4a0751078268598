package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JorgeDuranS/AppSegura/internal/infra/security"
	"github.com/JorgeDuranS/AppSegura/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError resolves the provided error against known cases or
// falls back to a generic response. Validation errors are handled first so
// the offending field reaches the client.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	var fieldErr *usecase.FieldError
	if errors.As(err, &fieldErr) {
		resp := NewErrorResponse(c, fieldErr.Message)
		resp.Field = fieldErr.Field
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	var passwordErr *security.PasswordValidationError
	if errors.As(err, &passwordErr) {
		resp := NewErrorResponse(c, passwordErr.Message)
		resp.Field = "password"
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}
