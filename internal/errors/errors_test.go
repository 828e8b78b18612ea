package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(fn func(c *gin.Context)) (int, APIError) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)

	var body APIError
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w.Code, body
}

func TestRespond_Fallbacks(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(c *gin.Context)
		status  int
		code    string
		message string
	}{
		{"not found", func(c *gin.Context) { NotFound(c, "") }, http.StatusNotFound, ErrCodeNotFound, "Resource not found"},
		{"forbidden", func(c *gin.Context) { Forbidden(c, "Not yours") }, http.StatusForbidden, ErrCodeForbidden, "Not yours"},
		{"conflict", func(c *gin.Context) { Conflict(c, "") }, http.StatusConflict, ErrCodeAlreadyExists, "Resource conflict"},
		{"rate limited", func(c *gin.Context) { TooManyRequests(c, "") }, http.StatusTooManyRequests, ErrCodeRateLimited, "Too many requests"},
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, ErrCodeInvalidCredentials, "") }, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Authentication required"},
		{"internal", func(c *gin.Context) { InternalError(c, "") }, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := respond(tt.fn)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
			assert.Nil(t, body.Details)
		})
	}
}

func TestBadRequestWithDetails(t *testing.T) {
	details := []map[string]string{{"field": "title", "message": "Title is required"}}

	status, body := respond(func(c *gin.Context) {
		BadRequestWithDetails(c, "Validation failed", details)
	})

	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ErrCodeInvalidInput, body.Code)
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, []any{map[string]any{"field": "title", "message": "Title is required"}}, body.Details)
}
