package lotofacil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLotoError(t *testing.T) {
	t.Run("basic_error", func(t *testing.T) {
		err := NewError(ErrCodeInvalidParameters, "test error message")

		assert.Equal(t, ErrCodeInvalidParameters, err.Code)
		assert.Equal(t, SeverityMedium, err.Severity)
		assert.False(t, err.Retryable)
		assert.Equal(t, "[LOTO_2000] test error message", err.Error())
	})

	t.Run("retryable_error", func(t *testing.T) {
		err := NewRetryableError(ErrCodeStoreFailure, "connection failed")

		assert.True(t, err.Retryable)
		assert.True(t, IsRetryableError(err))
	})

	t.Run("critical_error", func(t *testing.T) {
		err := NewCriticalError(ErrCodeSystem, "system failure")
		assert.Equal(t, SeverityCritical, err.Severity)
	})

	t.Run("error_with_details", func(t *testing.T) {
		err := ErrOutOfRange.
			WithField("draw2").
			WithDetails("got 26").
			WithUserID("user-456").
			WithMetadata("attempt", 3)

		assert.Equal(t, "draw2", err.Field)
		assert.Equal(t, "user-456", err.UserID)
		assert.Equal(t, 3, err.Metadata["attempt"])
		assert.Equal(t, "[LOTO_2004] draw2: all numbers must be between 1 and 25: got 26", err.Error())
		assert.Equal(t, "draw2: all numbers must be between 1 and 25 (got 26)", err.UserMessage())
	})

	t.Run("builders_do_not_mutate_sentinels", func(t *testing.T) {
		_ = ErrQuotaExceeded.WithDetails("x").WithField("f").WithMetadata("k", 1)

		assert.Empty(t, ErrQuotaExceeded.Details)
		assert.Empty(t, ErrQuotaExceeded.Field)
		assert.Nil(t, ErrQuotaExceeded.Metadata)
	})

	t.Run("metadata_is_copied", func(t *testing.T) {
		a := ErrQuotaExceeded.WithMetadata("count", 1)
		b := a.WithMetadata("count", 2)

		assert.Equal(t, 1, a.Metadata["count"])
		assert.Equal(t, 2, b.Metadata["count"])
	})

	t.Run("error_with_cause", func(t *testing.T) {
		originalErr := errors.New("original error")
		err := ErrStoreFailure.WithCause(originalErr)

		assert.Equal(t, originalErr, errors.Unwrap(err))
		assert.ErrorIs(t, err, originalErr)
		assert.ErrorIs(t, err, ErrStoreFailure)
	})
}

func TestErrorMatching(t *testing.T) {
	wrapped := fmt.Errorf("generate: %w", ErrWrongCount.WithField("draw1"))

	assert.ErrorIs(t, wrapped, ErrWrongCount)
	assert.NotErrorIs(t, wrapped, ErrOutOfRange)
	assert.Equal(t, ErrCodeWrongCount, CodeOf(wrapped))
	assert.Equal(t, ErrCodeSystem, CodeOf(errors.New("plain")))

	var lotoErr *LotoError
	require.ErrorAs(t, wrapped, &lotoErr)
	assert.Equal(t, "draw1", lotoErr.Field)
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "empty input", err: ErrEmptyInput, want: true},
		{name: "wrong count", err: ErrWrongCount, want: true},
		{name: "not an integer", err: ErrNotAnInteger, want: true},
		{name: "out of range", err: ErrOutOfRange, want: true},
		{name: "duplicate", err: ErrDuplicateValue, want: true},
		{name: "quantity", err: ErrInvalidQuantity, want: true},
		{name: "mode", err: ErrInvalidMode, want: true},
		{name: "wrapped", err: fmt.Errorf("x: %w", ErrDuplicateValue), want: true},
		{name: "quota", err: ErrQuotaExceeded, want: false},
		{name: "candidates", err: ErrInsufficientCandidates, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidationError(tt.err))
		})
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "store failure", err: ErrStoreFailure, want: true},
		{name: "store timeout", err: ErrStoreTimeout, want: true},
		{name: "breaker open", err: ErrCircuitBreakerOpen, want: true},
		{name: "not found", err: ErrNotFound, want: false},
		{name: "validation", err: ErrOutOfRange, want: false},
		{name: "connection refused", err: errors.New("dial tcp 127.0.0.1:6379: connection refused"), want: true},
		{name: "i/o timeout", err: errors.New("read tcp: i/o timeout"), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "redis loading", err: errors.New("LOADING Redis is loading the dataset in memory"), want: true},
		{name: "wrong type", err: errors.New("WRONGTYPE Operation against a key holding the wrong kind of value"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.err))
		})
	}
}
