package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/taskboard/internal/domain"
)

// KeyValueStore implements domain.KeyValueStore on the client_storage table.
type KeyValueStore struct {
	db *sql.DB
}

// NewKeyValueStore creates a new SQLite-backed KeyValueStore.
func NewKeyValueStore(db *DB) *KeyValueStore {
	return &KeyValueStore{db: db.SqlDB}
}

func (s *KeyValueStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO client_storage (storage_key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(storage_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("put storage entry: %w", err)
	}
	return nil
}

func (s *KeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM client_storage WHERE storage_key = ?", key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get storage entry: %w", err)
	}
	return value, nil
}

// Delete removes the entry. Deleting a missing key is not an error.
func (s *KeyValueStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM client_storage WHERE storage_key = ?", key,
	)
	if err != nil {
		return fmt.Errorf("delete storage entry: %w", err)
	}
	return nil
}
