package lotofacil

import (
	"context"
	"time"
)

// HistoryEntry is one past generation of an identity
type HistoryEntry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Mode      Mode      `json:"mode"`
	Games     []Draw    `json:"games"`
}

// HistoryRepository keeps a bounded newest-first history per identity
type HistoryRepository struct {
	store  Store
	prefix string
	limit  int
}

// NewHistoryRepository creates a repository keeping at most limit entries per identity
func NewHistoryRepository(store Store, keyPrefix string, limit int) *HistoryRepository {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryRepository{store: store, prefix: keyPrefix + HistoryKeyPrefix, limit: limit}
}

func (r *HistoryRepository) key(userID string) string { return r.prefix + userID }

// List returns the entries of userID, newest first
func (r *HistoryRepository) List(ctx context.Context, userID string) ([]HistoryEntry, error) {
	entries := []HistoryEntry{}
	if _, err := getJSON(ctx, r.store, r.key(userID), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Append puts entry at the front and drops anything past the limit
func (r *HistoryRepository) Append(ctx context.Context, userID string, entry HistoryEntry) error {
	entries, err := r.List(ctx, userID)
	if err != nil {
		return err
	}

	entries = append([]HistoryEntry{entry}, entries...)
	if len(entries) > r.limit {
		entries = entries[:r.limit]
	}
	return setJSON(ctx, r.store, r.key(userID), entries)
}

// Clear removes every entry of userID
func (r *HistoryRepository) Clear(ctx context.Context, userID string) error {
	return r.store.Delete(ctx, r.key(userID))
}
