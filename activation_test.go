package lotofacil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivationCatalog(t *testing.T) {
	c := NewActivationCatalog(map[string]int{"loto30d": 30, " Profile003 ": -1})

	days, ok := c.Lookup("LOTO30D")
	require.True(t, ok)
	assert.Equal(t, 30, days)

	_, ok = c.Lookup("loto30d")
	assert.False(t, ok, "lookup expects a normalised code")

	assert.Equal(t, []CodeInfo{
		{Code: "LOTO30D", Days: 30},
		{Code: "PROFILE003", Days: -1, Unlimited: true},
	}, c.List())

	c.Replace(DefaultActivationCodes())
	assert.Equal(t, len(DefaultActivationCodes()), c.Len())
	_, ok = c.Lookup("$ATENCCAO004")
	assert.True(t, ok)
}

func TestActivator_Activate(t *testing.T) {
	ctx := context.Background()

	newActivator := func() *Activator {
		return NewActivator(NewActivationCatalog(DefaultActivationCodes()), NewMemoryStore(), DefaultKeyPrefix)
	}

	t.Run("timed code", func(t *testing.T) {
		a := newActivator()
		acc := NewAccount("u1")

		r, err := a.Activate(ctx, acc, " loto30d ", testNow)
		require.NoError(t, err)
		assert.Equal(t, "LOTO30D", r.Code)
		assert.False(t, r.Unlimited)
		assert.Equal(t, testNow.Add(30*24*time.Hour), r.ExpiresAt)

		assert.Equal(t, "LOTO30D", acc.ActiveCode)
		assert.Equal(t, r.ExpiresAt, acc.CodeExpiresAt)
		assert.True(t, acc.CodeActive(testNow.Add(29*24*time.Hour)))
		assert.False(t, acc.CodeActive(testNow.Add(31*24*time.Hour)))
	})

	t.Run("unlimited code", func(t *testing.T) {
		a := newActivator()
		acc := NewAccount("u1")

		r, err := a.Activate(ctx, acc, "*#coabitacao005", testNow)
		require.NoError(t, err)
		assert.True(t, r.Unlimited)
		assert.True(t, r.ExpiresAt.IsZero())
		assert.True(t, acc.CodeUnlimited)
		assert.True(t, acc.CodeActive(testNow.Add(10*365*24*time.Hour)))
	})

	t.Run("redemption is stored", func(t *testing.T) {
		a := newActivator()
		_, err := a.Activate(ctx, NewAccount("u1"), "VIP2024", testNow)
		require.NoError(t, err)

		r, err := a.Redemption(ctx, "vip2024")
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.Equal(t, "u1", r.UserID)

		none, err := a.Redemption(ctx, "LOTO6M")
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("owner can re-activate", func(t *testing.T) {
		a := newActivator()
		acc := NewAccount("u1")

		_, err := a.Activate(ctx, acc, "LOTO15D", testNow)
		require.NoError(t, err)

		later := testNow.Add(10 * 24 * time.Hour)
		r, err := a.Activate(ctx, acc, "LOTO15D", later)
		require.NoError(t, err)
		assert.Equal(t, later.Add(15*24*time.Hour), r.ExpiresAt)
	})

	tests := []struct {
		name    string
		code    string
		setup   func(a *Activator)
		wantErr error
	}{
		{name: "empty", code: "   ", wantErr: ErrActivationCodeEmpty},
		{name: "unknown", code: "NOPE", wantErr: ErrActivationCodeInvalid},
		{
			name: "redeemed by another identity",
			code: "loto6m",
			setup: func(a *Activator) {
				_, err := a.Activate(ctx, NewAccount("other"), "LOTO6M", testNow)
				require.NoError(t, err)
			},
			wantErr: ErrActivationCodeUsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newActivator()
			if tt.setup != nil {
				tt.setup(a)
			}

			acc := NewAccount("u1")
			_, err := a.Activate(ctx, acc, tt.code, testNow)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, acc.ActiveCode)
		})
	}
}
