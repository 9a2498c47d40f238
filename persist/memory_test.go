package persist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/session"
)

func testRecord() Record {
	return Record{
		Identity: session.Identity{
			ID:            "user-1",
			Email:         "a@b.com",
			EmailVerified: true,
			Metadata:      map[string]any{"plan": "pro"},
		},
		Tokens: session.TokenPair{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			ExpiresAt:    time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		},
		SavedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("load on empty store: got %v, want ErrNotFound", err)
	}

	rec := testRecord()
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save record: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	if got.Identity.ID != rec.Identity.ID || got.Identity.Email != rec.Identity.Email {
		t.Fatalf("identity mismatch: got %+v", got.Identity)
	}
	if got.Tokens != rec.Tokens {
		t.Fatalf("tokens mismatch: got %+v want %+v", got.Tokens, rec.Tokens)
	}
	if !got.SavedAt.Equal(rec.SavedAt) {
		t.Fatalf("saved at mismatch: got %v want %v", got.SavedAt, rec.SavedAt)
	}
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear on empty store: %v", err)
	}

	if err := store.Save(ctx, testRecord()); err != nil {
		t.Fatalf("save record: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear record: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("load after clear: got %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreIsolatesCallerMutation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	rec := testRecord()
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save record: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	rec.Identity.Metadata["plan"] = "mutated"

	first, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	if first.Identity.Metadata["plan"] != "pro" {
		t.Fatalf("store leaked caller mutation: %v", first.Identity.Metadata)
	}

	// And mutating a loaded copy must not change later loads.
	first.Identity.Metadata["plan"] = "mutated"

	second, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if second.Identity.Metadata["plan"] != "pro" {
		t.Fatalf("store leaked loaded-copy mutation: %v", second.Identity.Metadata)
	}
}

func TestMemoryStoreHonorsCanceledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Save(ctx, testRecord()); err == nil {
		t.Fatal("save with canceled context: expected error")
	}
	if _, err := store.Load(ctx); err == nil {
		t.Fatal("load with canceled context: expected error")
	}
}
