// Package prefs persists small pieces of visitor state, such as the last
// applied search, in the local database.
package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/borghese/vitrine/internal/property"
)

// QueryKey is the key the last applied search is stored under.
const QueryKey = "filtrosImoveis"

// Store reads and writes saved_state rows.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an opened database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the raw value stored under key.
func (s *Store) Get(ctx context.Context, key string) (value string, found bool, err error) {
	err = s.db.QueryRowContext(ctx, "SELECT value FROM saved_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM saved_state WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// SaveQuery remembers q as the last applied search.
func (s *Store) SaveQuery(ctx context.Context, q property.Query) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encoding query: %w", err)
	}
	return s.Set(ctx, QueryKey, string(data))
}

// LoadQuery returns the last applied search. Unreadable or corrupt state is
// logged and reported as no saved search.
func (s *Store) LoadQuery(ctx context.Context) (property.Query, bool) {
	raw, found, err := s.Get(ctx, QueryKey)
	if err != nil {
		slog.Warn("loading saved search", "error", err)
		return property.Query{}, false
	}
	if !found {
		return property.Query{}, false
	}

	var q property.Query
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		slog.Warn("decoding saved search", "error", err)
		return property.Query{}, false
	}
	return q, true
}

// ClearQuery forgets the last applied search.
func (s *Store) ClearQuery(ctx context.Context) error {
	return s.Delete(ctx, QueryKey)
}
