package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/taskboard/internal/domain"
)

func TestKeyValueStore_PutGetDelete(t *testing.T) {
	db := newTestDB(t)
	kv := db.Storage()
	ctx := context.Background()

	if _, err := kv.Get(ctx, domain.StorageKeyToken); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}

	if err := kv.Put(ctx, domain.StorageKeyToken, []byte("tok-1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// Overwrite in place.
	if err := kv.Put(ctx, domain.StorageKeyToken, []byte("tok-2")); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}

	got, err := kv.Get(ctx, domain.StorageKeyToken)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "tok-2" {
		t.Fatalf("expected tok-2, got %q", got)
	}

	if err := kv.Delete(ctx, domain.StorageKeyToken); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := kv.Get(ctx, domain.StorageKeyToken); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again is a no-op.
	if err := kv.Delete(ctx, domain.StorageKeyToken); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}
