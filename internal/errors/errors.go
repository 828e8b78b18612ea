// Package errors renders failed requests as JSON bodies of the form
// {"code": ..., "message": ..., "details": ...}.
package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeAlreadyExists      = "ALREADY_EXISTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// APIError is the body of every error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// fallbacks holds the code and message used per status when the caller
// gives none.
var fallbacks = map[int]APIError{
	http.StatusBadRequest:          {Code: ErrCodeInvalidInput, Message: "Invalid request"},
	http.StatusUnauthorized:        {Code: ErrCodeUnauthorized, Message: "Authentication required"},
	http.StatusForbidden:           {Code: ErrCodeForbidden, Message: "Access denied"},
	http.StatusNotFound:            {Code: ErrCodeNotFound, Message: "Resource not found"},
	http.StatusConflict:            {Code: ErrCodeAlreadyExists, Message: "Resource conflict"},
	http.StatusTooManyRequests:     {Code: ErrCodeRateLimited, Message: "Too many requests"},
	http.StatusInternalServerError: {Code: ErrCodeInternalError, Message: "Internal server error"},
}

// Respond writes an error body. Empty code or message take the status
// fallback.
func Respond(c *gin.Context, status int, code, message string, details any) {
	body := fallbacks[status]
	if code != "" {
		body.Code = code
	}
	if message != "" {
		body.Message = message
	}
	body.Details = details
	c.JSON(status, &body)
}

// Unauthorized sends a 401 with the given code
func Unauthorized(c *gin.Context, code, message string) {
	Respond(c, http.StatusUnauthorized, code, message, nil)
}

// Forbidden sends a 403
func Forbidden(c *gin.Context, message string) {
	Respond(c, http.StatusForbidden, "", message, nil)
}

// NotFound sends a 404
func NotFound(c *gin.Context, message string) {
	Respond(c, http.StatusNotFound, "", message, nil)
}

// BadRequest sends a 400
func BadRequest(c *gin.Context, message string) {
	Respond(c, http.StatusBadRequest, "", message, nil)
}

// BadRequestWithDetails sends a 400 listing the offending fields
func BadRequestWithDetails(c *gin.Context, message string, details any) {
	Respond(c, http.StatusBadRequest, "", message, details)
}

// Conflict sends a 409
func Conflict(c *gin.Context, message string) {
	Respond(c, http.StatusConflict, "", message, nil)
}

// TooManyRequests sends a 429
func TooManyRequests(c *gin.Context, message string) {
	Respond(c, http.StatusTooManyRequests, "", message, nil)
}

// InternalError sends a 500. The message reaches the client, so it must not
// carry internal detail.
func InternalError(c *gin.Context, message string) {
	Respond(c, http.StatusInternalServerError, "", message, nil)
}
