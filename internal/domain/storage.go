package domain

import "context"

// Keys of the durable client storage entries that make up a session.
const (
	StorageKeyToken = "access_token"
	StorageKeyUser  = "user"
)

// KeyValueStore abstracts durable client-side storage.
// Get returns ErrNotFound when the key is absent.
type KeyValueStore interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Database is a migratable backing store for the repositories. The server
// applies its schema with Migrate before serving.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
