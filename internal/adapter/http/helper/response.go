package helper

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todoitems/internal/core/domain"
	"todoitems/internal/core/model/response"
	"todoitems/internal/core/port"
)

func SendSuccess(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

func SendNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.JSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, v port.Validator, err error) {
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", v.FormatValidationErrors(err))
}

func SendInternalError(c *gin.Context, message string, details ...any) {
	errors := []response.ValidationError{
		{
			Field:   "server",
			Message: message,
		},
	}

	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", errors, details...)
}

func SendUnauthorizedError(c *gin.Context, message string) {
	errors := []response.ValidationError{
		{
			Field:   "auth",
			Message: message,
		},
	}

	SendError(c, http.StatusUnauthorized, "UNAUTHORIZED", errors)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, "BAD_REQUEST", errors)
}

func SendNotFoundError(c *gin.Context, message string) {
	errors := []response.ValidationError{
		{
			Field:   "resource",
			Message: message,
		},
	}

	SendError(c, http.StatusNotFound, "NOT_FOUND", errors)
}

// SendDomainError maps a classified error to its status code. It reports
// whether the error was unclassified, in which case a 500 was sent.
func SendDomainError(c *gin.Context, field string, err error) bool {
	var domainErr *domain.Error

	if !errors.As(err, &domainErr) {
		SendInternalError(c, "unexpected error")
		return true
	}

	switch domainErr.Code {
	case domain.ErrCodeNotFound:
		SendNotFoundError(c, domainErr.Message)
	case domain.ErrCodeInvalid:
		SendBadRequestError(c, field, domainErr.Message)
	case domain.ErrCodeUnauthorized:
		SendUnauthorizedError(c, domainErr.Message)
	default:
		SendInternalError(c, "unexpected error")
		return true
	}

	return false
}
