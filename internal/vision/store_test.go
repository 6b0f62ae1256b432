package vision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/seehear/assist-backend/internal/shared"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, time.Minute), mr
}

func TestNewStore_DefaultTTL(t *testing.T) {
	store := NewStore(redis.NewClient(&redis.Options{}), 0)
	if store.frameTTL != 10*time.Minute {
		t.Errorf("expected default TTL 10m, got %v", store.frameTTL)
	}
}

func TestStore_SaveAndLatest(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UnixMilli()
	if err := store.Save(ctx, &Frame{SessionID: "sess-1", Timestamp: now - 1000, Data: []byte("older")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, &Frame{SessionID: "sess-1", Timestamp: now, Data: []byte("newer")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	frame, err := store.Latest(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if frame == nil {
		t.Fatal("expected a frame")
	}
	if string(frame.Data) != "newer" {
		t.Errorf("expected newest frame, got %q", frame.Data)
	}
	if frame.Timestamp != now {
		t.Errorf("expected timestamp %d, got %d", now, frame.Timestamp)
	}
}

func TestStore_SaveSetsTTL(t *testing.T) {
	store, mr := newTestStore(t)

	if err := store.Save(context.Background(), &Frame{SessionID: "sess-1", Timestamp: 1, Data: []byte("x")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if mr.TTL(frameKey("sess-1")) <= 0 {
		t.Error("expected frame key to carry a TTL")
	}
}

func TestStore_LatestEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Latest(context.Background(), "nope")
	if !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a session with no frames, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.Save(ctx, &Frame{SessionID: "sess-1", Timestamp: 1, Data: []byte("x")})
	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := store.Latest(ctx, "sess-1")
	if !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
