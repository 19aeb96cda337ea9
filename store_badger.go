package lotofacil

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore persists values in an embedded badger database
type BadgerStore struct {
	db     *badger.DB
	logger Logger
}

// NewBadgerStore opens (or creates) the database at path
func NewBadgerStore(path string, logger Logger) (*BadgerStore, error) {
	return OpenBadgerStore(badger.DefaultOptions(path).WithLogger(nil), logger)
}

// OpenBadgerStore opens a database with explicit options, e.g. WithInMemory for tests
func OpenBadgerStore(opts badger.Options, logger Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = NewSilentLogger()
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, ErrStoreFailure.WithDetails("open badger").WithCause(err)
	}
	return &BadgerStore{db: db, logger: logger}, nil
}

// Get returns the value stored at key
func (b *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	var valCopy []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		valCopy, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound.WithDetails(key)
		}
		b.logger.Error("badger get %s: %v", key, err)
		return nil, ErrStoreFailure.WithDetails(key).WithCause(err)
	}
	return valCopy, nil
}

// Set stores value at key
func (b *BadgerStore) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidParameters.WithDetails("empty key")
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		b.logger.Error("badger set %s: %v", key, err)
		return ErrStoreFailure.WithDetails(key).WithCause(err)
	}
	return nil
}

// Delete removes key
func (b *BadgerStore) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return ErrStoreFailure.WithDetails(key).WithCause(err)
	}
	return nil
}

// Ping reports whether the database is still open
func (b *BadgerStore) Ping(context.Context) error {
	if b.db.IsClosed() {
		return ErrStoreFailure.WithDetails("badger is closed")
	}
	return nil
}

// Close closes the database
func (b *BadgerStore) Close() error { return b.db.Close() }
