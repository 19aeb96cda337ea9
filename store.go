package lotofacil

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
)

// Store is the key-value abstraction behind accounts, activation codes and history.
// Get returns ErrNotFound when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Pinger is implemented by stores that can report their health
type Pinger interface {
	Ping(ctx context.Context) error
}

// MemoryStore is an in-process Store, values are copied on the way in and out
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get returns a copy of the value stored at key
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrStoreTimeout.WithCause(err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound.WithDetails(key)
	}
	return slices.Clone(v), nil
}

// Set stores a copy of value at key
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return ErrStoreTimeout.WithCause(err)
	}
	if key == "" {
		return ErrInvalidParameters.WithDetails("empty key")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = slices.Clone(value)
	return nil
}

// Delete removes key, deleting a missing key is not an error
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return ErrStoreTimeout.WithCause(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Len returns the number of stored keys
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}

// Ping always succeeds
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close drops every key
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string][]byte)
	return nil
}

// getJSON loads key into v, found is false when the key is absent
func getJSON(ctx context.Context, s Store, key string, v any) (found bool, err error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, ErrDeserialization.WithDetails(key).WithCause(err)
	}
	return true, nil
}

// setJSON stores v encoded as JSON at key
func setJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return ErrSerialization.WithDetails(key).WithCause(err)
	}
	return s.Set(ctx, key, data)
}

// NewStore opens the Store selected by cfg.Store.Driver, wrapped in a circuit breaker when enabled
func NewStore(cfg *Config, logger Logger) (Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	var (
		store Store
		err   error
	)
	switch cfg.Store.Driver {
	case StoreDriverRedis:
		store = NewRedisStoreFromConfig(NewRedisClientFromConfig(cfg.Redis), cfg.Redis, logger)
	case StoreDriverBadger:
		store, err = NewBadgerStore(cfg.Store.BadgerPath, logger)
	case StoreDriverMemory, "":
		store = NewMemoryStore()
	default:
		return nil, ErrConfigInvalid.WithField("store.driver").WithDetails(cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Opened %s store", cfg.Store.Driver)

	if cfg.CircuitBreaker != nil && cfg.CircuitBreaker.Enabled {
		return NewBreakerStore(store, cfg.CircuitBreaker, logger), nil
	}
	return store, nil
}
