package cache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestMemoryStore_PutWithoutTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	current := time.Now().UTC()
	store := NewMemoryStore(func() time.Time { return current })

	store.Put(ctx, "key", []byte("value"), 0)

	current = current.Add(24 * time.Hour)
	value, ok := store.Get(ctx, "key")
	if !ok || !bytes.Equal(value, []byte("value")) {
		t.Fatalf("expected entry without ttl to survive, got %q ok=%v", value, ok)
	}
}

func TestMemoryStore_GetCopiesStoredValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)

	original := []byte("payload")
	store.Put(ctx, "key", original, time.Minute)
	original[0] = 'X'

	value, ok := store.Get(ctx, "key")
	if !ok {
		t.Fatalf("expected entry")
	}
	if !bytes.Equal(value, []byte("payload")) {
		t.Fatalf("stored value aliased caller buffer: %q", value)
	}

	value[0] = 'Y'
	again, _ := store.Get(ctx, "key")
	if !bytes.Equal(again, []byte("payload")) {
		t.Fatalf("returned value aliased stored buffer: %q", again)
	}
}

func TestMemoryStore_BlankKeyIsIgnored(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)

	store.Put(ctx, "  ", []byte("value"), 0)
	if store.size() != 0 {
		t.Fatalf("expected blank key to be ignored")
	}
	if _, ok := store.Get(ctx, ""); ok {
		t.Fatalf("expected blank key lookup to miss")
	}
}
