package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/residenza/service-facility/internal/platform/apperror"
	"github.com/residenza/service-facility/internal/platform/pagination"
)

// Envelope is the body shape returned by every endpoint.
type Envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Details []string `json:"details,omitempty"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// SuccessWithMessage writes a 200 envelope with a message.
func SuccessWithMessage(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 envelope around a page of items.
func Paginated[T any](c *gin.Context, result pagination.Result[T]) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: result})
}

// BadRequest writes a 400 envelope.
func BadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, Envelope{
		Success: false,
		Error:   apperror.KindValidation.String(),
		Message: message,
		Details: details,
	})
}

// Unauthorized writes a 401 envelope and aborts the chain.
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{
		Success: false,
		Error:   apperror.KindUnauthorized.String(),
		Message: message,
	})
}

// Forbidden writes a 403 envelope and aborts the chain.
func Forbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, Envelope{
		Success: false,
		Error:   apperror.KindForbidden.String(),
		Message: message,
	})
}

// Error maps err to its status code and writes the envelope. Internal errors are
// attached to the gin context for the request logger and answered generically.
func Error(c *gin.Context, err error) {
	appErr := apperror.As(err)
	if appErr.Kind == apperror.KindInternal {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, Envelope{
			Success: false,
			Error:   apperror.KindInternal.String(),
			Message: "internal server error",
		})
		return
	}

	c.JSON(appErr.Kind.HTTPStatus(), Envelope{
		Success: false,
		Error:   appErr.Kind.String(),
		Message: appErr.Message,
		Details: appErr.Details,
	})
}
