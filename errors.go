package lotofacil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode 错误代码类型
type ErrorCode string

// 错误代码常量
const (
	// 系统级错误 (1000-1999)
	ErrCodeSystem          ErrorCode = "LOTO_1000"
	ErrCodeStoreFailure    ErrorCode = "LOTO_1001"
	ErrCodeStoreTimeout    ErrorCode = "LOTO_1002"
	ErrCodeNotFound        ErrorCode = "LOTO_1003"
	ErrCodeConfigInvalid   ErrorCode = "LOTO_1004"
	ErrCodeSerialization   ErrorCode = "LOTO_1005"
	ErrCodeDeserialization ErrorCode = "LOTO_1006"

	// 输入校验错误 (2000-2999)
	ErrCodeInvalidParameters ErrorCode = "LOTO_2000"
	ErrCodeEmptyInput        ErrorCode = "LOTO_2001"
	ErrCodeWrongCount        ErrorCode = "LOTO_2002"
	ErrCodeNotAnInteger      ErrorCode = "LOTO_2003"
	ErrCodeOutOfRange        ErrorCode = "LOTO_2004"
	ErrCodeDuplicateValue    ErrorCode = "LOTO_2005"
	ErrCodeInvalidQuantity   ErrorCode = "LOTO_2006"
	ErrCodeInvalidMode       ErrorCode = "LOTO_2007"

	// 生成错误 (3000-3999)
	ErrCodeInsufficientCandidates ErrorCode = "LOTO_3000"
	ErrCodeRandomSource           ErrorCode = "LOTO_3001"

	// 配额与激活码错误 (4000-4999)
	ErrCodeQuotaExceeded    ErrorCode = "LOTO_4000"
	ErrCodeCodeEmpty        ErrorCode = "LOTO_4001"
	ErrCodeCodeInvalid      ErrorCode = "LOTO_4002"
	ErrCodeCodeAlreadyUsed  ErrorCode = "LOTO_4003"
	ErrCodeAnonymousSession ErrorCode = "LOTO_4004"
	ErrCodeSessionInvalid   ErrorCode = "LOTO_4005"

	// 熔断相关错误 (5000-5999)
	ErrCodeCircuitBreakerOpen ErrorCode = "LOTO_5000"
)

// ErrorSeverity 错误严重程度
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "critical"
	SeverityHigh     ErrorSeverity = "high"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityLow      ErrorSeverity = "low"
)

// LotoError is the error type returned by every operation of the package
type LotoError struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Details   string         `json:"details,omitempty"`
	Field     string         `json:"field,omitempty"`
	Severity  ErrorSeverity  `json:"severity"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    string         `json:"user_id,omitempty"`
	Cause     error          `json:"-"`
	Retryable bool           `json:"retryable"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Error 实现 error 接口
func (e *LotoError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, msg, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// UserMessage returns the message meant for the end user, without the code prefix
func (e *LotoError) UserMessage() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

// Unwrap 实现 errors.Unwrap 接口
func (e *LotoError) Unwrap() error { return e.Cause }

// Is 实现 errors.Is 接口, two LotoErrors match when their codes match
func (e *LotoError) Is(target error) bool {
	if t, ok := target.(*LotoError); ok {
		return e.Code == t.Code
	}
	return false
}

func (e *LotoError) clone() *LotoError {
	c := *e
	c.Timestamp = time.Now()
	if e.Metadata != nil {
		c.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// WithCause returns a copy carrying the cause error
func (e *LotoError) WithCause(cause error) *LotoError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithDetails returns a copy carrying extra details
func (e *LotoError) WithDetails(details string) *LotoError {
	c := e.clone()
	c.Details = details
	return c
}

// WithField returns a copy naming the input field that failed
func (e *LotoError) WithField(field string) *LotoError {
	c := e.clone()
	c.Field = field
	return c
}

// WithUserID returns a copy tagged with the identity
func (e *LotoError) WithUserID(userID string) *LotoError {
	c := e.clone()
	c.UserID = userID
	return c
}

// WithMetadata returns a copy with one more metadata entry
func (e *LotoError) WithMetadata(key string, value any) *LotoError {
	c := e.clone()
	if c.Metadata == nil {
		c.Metadata = make(map[string]any)
	}
	c.Metadata[key] = value
	return c
}

// NewError 创建新的错误
func NewError(code ErrorCode, message string) *LotoError {
	return &LotoError{
		Code:      code,
		Message:   message,
		Severity:  SeverityMedium,
		Timestamp: time.Now(),
	}
}

// NewRetryableError 创建可重试的错误
func NewRetryableError(code ErrorCode, message string) *LotoError {
	err := NewError(code, message)
	err.Retryable = true
	return err
}

// NewCriticalError 创建严重错误
func NewCriticalError(code ErrorCode, message string) *LotoError {
	err := NewError(code, message)
	err.Severity = SeverityCritical
	return err
}

// 预定义的错误实例, compare with errors.Is and derive with the With* builders
var (
	// 系统级错误
	ErrSystemError       = NewCriticalError(ErrCodeSystem, "system error occurred")
	ErrStoreFailure      = NewRetryableError(ErrCodeStoreFailure, "store operation failed")
	ErrStoreTimeout      = NewRetryableError(ErrCodeStoreTimeout, "store operation timeout")
	ErrNotFound          = NewError(ErrCodeNotFound, "key not found")
	ErrConfigInvalid     = NewCriticalError(ErrCodeConfigInvalid, "configuration is invalid")
	ErrSerialization     = NewError(ErrCodeSerialization, "serialization failed")
	ErrDeserialization   = NewError(ErrCodeDeserialization, "deserialization failed")
	ErrInvalidParameters = NewError(ErrCodeInvalidParameters, "invalid parameters provided")

	// 输入校验错误
	ErrEmptyInput      = NewError(ErrCodeEmptyInput, "enter 15 numbers separated by commas")
	ErrWrongCount      = NewError(ErrCodeWrongCount, "exactly 15 numbers are required")
	ErrNotAnInteger    = NewError(ErrCodeNotAnInteger, "only whole numbers separated by commas are allowed")
	ErrOutOfRange      = NewError(ErrCodeOutOfRange, "all numbers must be between 1 and 25")
	ErrDuplicateValue  = NewError(ErrCodeDuplicateValue, "the 15 numbers must not repeat")
	ErrInvalidQuantity = NewError(ErrCodeInvalidQuantity, "quantity of games must be between 1 and 3")
	ErrInvalidMode     = NewError(ErrCodeInvalidMode, "unknown generation mode")

	// 生成错误
	ErrInsufficientCandidates = NewError(ErrCodeInsufficientCandidates, "not enough numbers available after applying filters")
	ErrRandomSource           = NewError(ErrCodeRandomSource, "random source failed")

	// 配额与激活码错误
	ErrQuotaExceeded         = NewError(ErrCodeQuotaExceeded, "daily generation limit reached")
	ErrActivationCodeEmpty   = NewError(ErrCodeCodeEmpty, "activation code is empty")
	ErrActivationCodeInvalid = NewError(ErrCodeCodeInvalid, "activation code is invalid")
	ErrActivationCodeUsed    = NewError(ErrCodeCodeAlreadyUsed, "activation code was already redeemed by another user")
	ErrAnonymousSession      = NewError(ErrCodeAnonymousSession, "private/incognito windows are not supported, please use a regular browser window")
	ErrSessionInvalid        = NewError(ErrCodeSessionInvalid, "session is invalid")

	// 熔断相关错误
	ErrCircuitBreakerOpen = NewRetryableError(ErrCodeCircuitBreakerOpen, "circuit breaker is open")
)

// IsValidationError reports whether err is one of the input validation errors
func IsValidationError(err error) bool {
	var lotoErr *LotoError
	if !errors.As(err, &lotoErr) {
		return false
	}
	return strings.HasPrefix(string(lotoErr.Code), "LOTO_2")
}

// CodeOf extracts the error code, ErrCodeSystem for foreign errors
func CodeOf(err error) ErrorCode {
	var lotoErr *LotoError
	if errors.As(err, &lotoErr) {
		return lotoErr.Code
	}
	return ErrCodeSystem
}

// IsRetryableError 检查是否为可重试错误
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var lotoErr *LotoError
	if errors.As(err, &lotoErr) {
		return lotoErr.Retryable
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"network is unreachable",
		"temporary failure",
		"server closed",
		"broken pipe",
		"i/o timeout",
		"dial tcp",
		"read tcp",
		"write tcp",
		"connection timed out",
		"no route to host",
		"connection aborted",
		"redis: connection pool timeout",
		"context deadline exceeded",
		"loading",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
