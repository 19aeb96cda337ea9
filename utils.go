package lotofacil

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ValidateQuantity validates the number of games requested in one batch
func ValidateQuantity(quantity int) error {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return ErrInvalidQuantity.WithDetails(fmt.Sprintf("got %d", quantity))
	}
	return nil
}

// NormalizeCode trims and upper-cases an activation code
func NormalizeCode(code string) string { return strings.ToUpper(strings.TrimSpace(code)) }

// NewID returns a random identifier for users and history entries
func NewID() string { return uuid.NewString() }

// HoursUntil rounds a remaining duration up to whole hours, as shown to users
func HoursUntil(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours()))
}

// withField names the failing input on a LotoError, other errors pass through
func withField(err error, field string) error {
	var lotoErr *LotoError
	if errors.As(err, &lotoErr) {
		return lotoErr.WithField(field)
	}
	return err
}

// keyedMutex serialises work per key, entries are dropped once unused
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedEntry)}
}

// Lock acquires the mutex of key and returns its release function
func (km *keyedMutex) Lock(key string) func() {
	km.mu.Lock()
	entry, ok := km.locks[key]
	if !ok {
		entry = &keyedEntry{}
		km.locks[key] = entry
	}
	entry.refs++
	km.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		km.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(km.locks, key)
		}
		km.mu.Unlock()
	}
}

// size returns the number of keys currently tracked
func (km *keyedMutex) size() int {
	km.mu.Lock()
	defer km.mu.Unlock()

	return len(km.locks)
}
