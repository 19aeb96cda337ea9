package lotofacil

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Redemption records which identity redeemed an activation code
type Redemption struct {
	Code      string    `json:"code"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Unlimited bool      `json:"unlimited,omitempty"`
}

// CodeInfo describes one catalogue entry
type CodeInfo struct {
	Code      string `json:"code"`
	Days      int    `json:"days"`
	Unlimited bool   `json:"unlimited"`
}

// ActivationCatalog is the set of redeemable codes, replaceable at runtime
type ActivationCatalog struct {
	mu    sync.RWMutex
	codes map[string]int
}

// NewActivationCatalog creates a catalogue from code → days (-1 unlimited)
func NewActivationCatalog(codes map[string]int) *ActivationCatalog {
	c := &ActivationCatalog{}
	c.Replace(codes)
	return c
}

// Replace swaps the catalogue contents, codes are normalised
func (c *ActivationCatalog) Replace(codes map[string]int) {
	normalized := make(map[string]int, len(codes))
	for code, days := range codes {
		normalized[NormalizeCode(code)] = days
	}

	c.mu.Lock()
	c.codes = normalized
	c.mu.Unlock()
}

// Lookup returns the validity in days of a normalised code
func (c *ActivationCatalog) Lookup(code string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	days, ok := c.codes[code]
	return days, ok
}

// List returns the catalogue sorted by code
func (c *ActivationCatalog) List() []CodeInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := lo.MapToSlice(c.codes, func(code string, days int) CodeInfo {
		return CodeInfo{Code: code, Days: days, Unlimited: days == UnlimitedCodeDays}
	})
	slices.SortFunc(infos, func(a, b CodeInfo) int {
		switch {
		case a.Code < b.Code:
			return -1
		case a.Code > b.Code:
			return 1
		}
		return 0
	})
	return infos
}

// Len returns the number of codes
func (c *ActivationCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.codes)
}

// Activator redeems activation codes against accounts
type Activator struct {
	catalog *ActivationCatalog
	store   Store
	prefix  string
}

// NewActivator creates an activator storing redemptions under keyPrefix
func NewActivator(catalog *ActivationCatalog, store Store, keyPrefix string) *Activator {
	return &Activator{catalog: catalog, store: store, prefix: keyPrefix + CodeKeyPrefix}
}

func (a *Activator) key(code string) string { return a.prefix + code }

// Redemption returns who redeemed code, nil when nobody has
func (a *Activator) Redemption(ctx context.Context, code string) (*Redemption, error) {
	var r Redemption
	found, err := getJSON(ctx, a.store, a.key(NormalizeCode(code)), &r)
	if err != nil || !found {
		return nil, err
	}
	return &r, nil
}

// Activate binds code to acc. A code redeemed by another identity is rejected;
// redeeming it again as its owner refreshes the expiry. acc is updated in place
// but not saved.
func (a *Activator) Activate(ctx context.Context, acc *Account, code string, now time.Time) (*Redemption, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrActivationCodeEmpty
	}

	days, ok := a.catalog.Lookup(code)
	if !ok {
		return nil, ErrActivationCodeInvalid.WithUserID(acc.UserID)
	}

	existing, err := a.Redemption(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.UserID != acc.UserID {
		return nil, ErrActivationCodeUsed.WithUserID(acc.UserID)
	}

	r := &Redemption{Code: code, UserID: acc.UserID}
	if days == UnlimitedCodeDays {
		r.Unlimited = true
	} else {
		r.ExpiresAt = now.Add(time.Duration(days) * 24 * time.Hour)
	}

	if err := setJSON(ctx, a.store, a.key(code), r); err != nil {
		return nil, err
	}

	acc.ActiveCode = code
	acc.CodeUnlimited = r.Unlimited
	acc.CodeExpiresAt = r.ExpiresAt
	return r, nil
}
