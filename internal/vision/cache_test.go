package vision

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/seehear/assist-backend/internal/worker"
)

type gatedFrameStore struct {
	gate chan struct{}

	mu      sync.Mutex
	saved   []*Frame
	deleted []string
}

func (s *gatedFrameStore) Save(ctx context.Context, frame *Frame) error {
	<-s.gate
	s.mu.Lock()
	s.saved = append(s.saved, frame)
	s.mu.Unlock()
	return nil
}

func (s *gatedFrameStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	s.deleted = append(s.deleted, sessionID)
	s.mu.Unlock()
	return nil
}

func TestCache_UpdateReplacesFrame(t *testing.T) {
	cache := NewCache(nil, nil, nil)

	cache.Update("conn-1", &Frame{Timestamp: 1, Data: []byte("old")})
	cache.Update("conn-1", &Frame{Timestamp: 2, Data: []byte("new")})

	frame := cache.Current("conn-1")
	if frame == nil {
		t.Fatal("expected a cached frame")
	}
	if string(frame.Data) != "new" {
		t.Errorf("expected newest frame, got %q", frame.Data)
	}
}

func TestCache_CurrentMissing(t *testing.T) {
	cache := NewCache(nil, nil, nil)
	if frame := cache.Current("nope"); frame != nil {
		t.Errorf("expected nil for unknown owner, got %+v", frame)
	}
}

func TestCache_OwnersAreIsolated(t *testing.T) {
	cache := NewCache(nil, nil, nil)

	cache.Update("conn-1", &Frame{Data: []byte("one")})
	cache.Update("conn-2", &Frame{Data: []byte("two")})

	if string(cache.Current("conn-1").Data) != "one" {
		t.Error("conn-1 frame clobbered by conn-2")
	}
	if string(cache.Current("conn-2").Data) != "two" {
		t.Error("conn-2 frame clobbered by conn-1")
	}
}

func TestCache_Release(t *testing.T) {
	cache := NewCache(nil, nil, nil)

	cache.Update("conn-1", &Frame{Data: []byte("x")})
	cache.Release("conn-1")

	if cache.Current("conn-1") != nil {
		t.Error("expected frame to be released")
	}
}

// A persist job scheduled by Update owns its own reference to the frame, so
// releasing the owner mid-flight (a disconnect) must not affect the write.
func TestCache_PersistSurvivesRelease(t *testing.T) {
	store := &gatedFrameStore{gate: make(chan struct{})}
	pool := worker.NewPool(1, 4, nil)
	pool.Start()

	cache := NewCache(store, pool, nil)
	cache.Update("conn-1", &Frame{SessionID: "sess-1", Timestamp: 7, Data: []byte("jpeg-bytes")})

	// Disconnect while the save is still blocked on the gate.
	cache.Release("conn-1")
	if cache.Current("conn-1") != nil {
		t.Fatal("expected frame to be released")
	}
	close(store.gate)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.Stop(ctx); err != nil {
		t.Fatalf("pool drain failed: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.saved) != 1 {
		t.Fatalf("expected 1 persisted frame, got %d", len(store.saved))
	}
	if string(store.saved[0].Data) != "jpeg-bytes" || store.saved[0].SessionID != "sess-1" {
		t.Errorf("persisted frame corrupted: %+v", store.saved[0])
	}
}

func TestCache_CleanupDeletesSessionFrames(t *testing.T) {
	store := &gatedFrameStore{gate: make(chan struct{})}
	close(store.gate)
	pool := worker.NewPool(1, 4, nil)
	pool.Start()

	cache := NewCache(store, pool, nil)
	cache.Cleanup("sess-1")
	cache.Cleanup("")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.Stop(ctx); err != nil {
		t.Fatalf("pool drain failed: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.deleted) != 1 || store.deleted[0] != "sess-1" {
		t.Errorf("expected one delete for sess-1, got %v", store.deleted)
	}
}

// A reader racing an updater must always see a whole frame, old or new.
func TestCache_ConcurrentUpdateAndRead(t *testing.T) {
	cache := NewCache(nil, nil, nil)
	stop := make(chan struct{})
	time.AfterFunc(100*time.Millisecond, func() { close(stop) })

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		i := int64(0)
		for {
			select {
			case <-stop:
				return
			default:
			}
			i++
			cache.Update("conn-1", &Frame{Timestamp: i, Data: []byte("frame")})
		}
	}()

	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if frame := cache.Current("conn-1"); frame != nil {
				if string(frame.Data) != "frame" {
					t.Error("observed a torn frame")
					return
				}
			}
		}
	}()

	wg.Wait()
}
