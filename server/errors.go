package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kydenul/lotofacil"
)

// APIError represents a structured error response
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Field      string `json:"field,omitempty"`
	RetryAfter int64  `json:"retry_after_ms,omitempty"`
}

// Boundary error codes that do not come from the library
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// RespondError sends a structured error response
func RespondError(c *gin.Context, status int, apiErr APIError) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   apiErr,
	})
}

// BadRequest sends a 400 error
func BadRequest(c *gin.Context, message string) {
	RespondError(c, http.StatusBadRequest, APIError{Code: ErrCodeBadRequest, Message: message})
}

// NotFound sends a 404 error
func NotFound(c *gin.Context, message string) {
	RespondError(c, http.StatusNotFound, APIError{Code: ErrCodeNotFound, Message: message})
}

// StatusFor maps a library error to its HTTP status
func StatusFor(err error) int {
	switch code := lotofacil.CodeOf(err); {
	case lotofacil.IsValidationError(err),
		code == lotofacil.ErrCodeCodeEmpty,
		code == lotofacil.ErrCodeCodeInvalid,
		code == lotofacil.ErrCodeInsufficientCandidates:
		return http.StatusBadRequest
	case code == lotofacil.ErrCodeQuotaExceeded,
		code == lotofacil.ErrCodeCodeAlreadyUsed,
		code == lotofacil.ErrCodeAnonymousSession:
		return http.StatusForbidden
	case code == lotofacil.ErrCodeSessionInvalid:
		return http.StatusUnauthorized
	case code == lotofacil.ErrCodeStoreFailure,
		code == lotofacil.ErrCodeStoreTimeout,
		code == lotofacil.ErrCodeCircuitBreakerOpen:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondLotoError translates err into a structured response and records it on the context
func RespondLotoError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := StatusFor(err)
	var lotoErr *lotofacil.LotoError
	if !errors.As(err, &lotoErr) || status == http.StatusInternalServerError {
		RespondError(c, status, APIError{Code: string(lotofacil.ErrCodeSystem), Message: "internal error"})
		return
	}

	apiErr := APIError{
		Code:    string(lotoErr.Code),
		Message: lotoErr.Message,
		Details: lotoErr.Details,
		Field:   lotoErr.Field,
	}
	if ms, ok := lotoErr.Metadata["retry_after_ms"].(int64); ok {
		apiErr.RetryAfter = ms
	}
	RespondError(c, status, apiErr)
}
