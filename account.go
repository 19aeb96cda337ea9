package lotofacil

import (
	"context"
	"fmt"
	"time"
)

// Account is the quota state of one identity
type Account struct {
	UserID        string    `json:"user_id"`
	Count         int       `json:"count"`
	WindowStart   time.Time `json:"window_start,omitzero"`
	ActiveCode    string    `json:"active_code,omitempty"`
	CodeExpiresAt time.Time `json:"code_expires_at,omitzero"`
	CodeUnlimited bool      `json:"code_unlimited,omitempty"`
}

// QuotaPolicy holds the limits an Account is checked against
type QuotaPolicy struct {
	MaxGenerations int
	Window         time.Duration
}

// DefaultQuotaPolicy returns 3 games per rolling 24 hours
func DefaultQuotaPolicy() QuotaPolicy {
	return QuotaPolicy{MaxGenerations: DefaultMaxGenerations, Window: DefaultQuotaWindow}
}

// NewAccount creates an account with no usage recorded
func NewAccount(userID string) *Account { return &Account{UserID: userID} }

// CodeActive reports whether an activation code currently lifts the quota.
// An expired code is cleared.
func (a *Account) CodeActive(now time.Time) bool {
	if a.ActiveCode == "" {
		return false
	}
	if a.CodeUnlimited {
		return true
	}
	if now.After(a.CodeExpiresAt) {
		a.ActiveCode = ""
		a.CodeExpiresAt = time.Time{}
		return false
	}
	return true
}

// windowElapsed reports whether no window is open or the open one has run out
func (a *Account) windowElapsed(window time.Duration, now time.Time) bool {
	return a.WindowStart.IsZero() || now.Sub(a.WindowStart) >= window
}

// CanGenerate reports whether quantity more games fit in the quota
func (a *Account) CanGenerate(quantity int, policy QuotaPolicy, now time.Time) bool {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return false
	}
	if a.CodeActive(now) {
		return true
	}
	if a.windowElapsed(policy.Window, now) {
		return quantity <= policy.MaxGenerations
	}
	return a.Count+quantity <= policy.MaxGenerations
}

// Consume records quantity games; a no-op while a code is active
func (a *Account) Consume(quantity int, policy QuotaPolicy, now time.Time) {
	if quantity < MinQuantity || a.CodeActive(now) {
		return
	}
	if a.windowElapsed(policy.Window, now) {
		a.Count = min(quantity, policy.MaxGenerations)
		a.WindowStart = now
		return
	}
	a.Count = min(a.Count+quantity, policy.MaxGenerations)
}

// Used returns the games counted in the current window, 0 once it has elapsed
func (a *Account) Used(policy QuotaPolicy, now time.Time) int {
	if a.windowElapsed(policy.Window, now) {
		return 0
	}
	return a.Count
}

// RetryAfter returns how long until the current window ends
func (a *Account) RetryAfter(policy QuotaPolicy, now time.Time) time.Duration {
	if a.WindowStart.IsZero() {
		return 0
	}
	return max(0, policy.Window-now.Sub(a.WindowStart))
}

// quotaError builds the QuotaExceeded error shown to the user
func (a *Account) quotaError(policy QuotaPolicy, now time.Time) *LotoError {
	retry := a.RetryAfter(policy, now)
	return ErrQuotaExceeded.
		WithUserID(a.UserID).
		WithDetails(fmt.Sprintf("%d of %d games used, try again in %d hour(s)",
			a.Count, policy.MaxGenerations, HoursUntil(retry))).
		WithMetadata("count", a.Count).
		WithMetadata("max_generations", policy.MaxGenerations).
		WithMetadata("retry_after_ms", retry.Milliseconds())
}

// AccountRepository loads and saves accounts in a Store
type AccountRepository struct {
	store  Store
	prefix string
}

// NewAccountRepository creates a repository under keyPrefix
func NewAccountRepository(store Store, keyPrefix string) *AccountRepository {
	return &AccountRepository{store: store, prefix: keyPrefix + AccountKeyPrefix}
}

func (r *AccountRepository) key(userID string) string { return r.prefix + userID }

// Load returns the account of userID, a fresh one when none is stored
func (r *AccountRepository) Load(ctx context.Context, userID string) (*Account, error) {
	acc := NewAccount(userID)
	if _, err := getJSON(ctx, r.store, r.key(userID), acc); err != nil {
		return nil, err
	}
	acc.UserID = userID
	return acc, nil
}

// Save persists acc
func (r *AccountRepository) Save(ctx context.Context, acc *Account) error {
	if acc == nil || acc.UserID == "" {
		return ErrInvalidParameters.WithDetails("account without user id")
	}
	return setJSON(ctx, r.store, r.key(acc.UserID), acc)
}
