package vision

import (
	"context"
	"log/slog"
	"sync"

	"github.com/seehear/assist-backend/internal/worker"
)

// FrameStore is the persistence half of the cache.
type FrameStore interface {
	Save(ctx context.Context, frame *Frame) error
	Delete(ctx context.Context, sessionID string) error
}

// Cache holds the latest frame per connection. Entries are replaced by
// pointer assignment, never mutated in place, so a concurrent reader observes
// either the old or the new frame whole. Keys are connection-scoped: the
// owning connection's inbound loop writes, its pipeline reads, and no other
// task touches the entry.
type Cache struct {
	mu     sync.RWMutex
	frames map[string]*Frame

	store  FrameStore
	pool   *worker.Pool
	logger *slog.Logger
}

func NewCache(store FrameStore, pool *worker.Pool, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		frames: make(map[string]*Frame),
		store:  store,
		pool:   pool,
		logger: logger.With("component", "frame-cache"),
	}
}

// Update replaces the cached frame for owner unconditionally. When the frame
// belongs to a session, a best-effort persist is scheduled; a full queue or a
// failed write never blocks the inbound loop.
func (c *Cache) Update(owner string, frame *Frame) {
	c.mu.Lock()
	c.frames[owner] = frame
	c.mu.Unlock()

	if frame.SessionID == "" || c.store == nil || c.pool == nil {
		return
	}

	// The job keeps its own reference to the frame, so it survives the
	// connection that scheduled it.
	persisted := frame
	err := c.pool.Submit(worker.Job{
		Name: "frame-persist",
		Run: func(ctx context.Context) error {
			return c.store.Save(ctx, persisted)
		},
	})
	if err != nil {
		c.logger.Warn("frame persist skipped", "session_id", frame.SessionID, "error", err)
	}
}

// Current returns the latest frame for owner, or nil.
func (c *Cache) Current(owner string) *Frame {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frames[owner]
}

// Release drops the cached frame for owner. Called on disconnect; persisted
// copies are unaffected.
func (c *Cache) Release(owner string) {
	c.mu.Lock()
	delete(c.frames, owner)
	c.mu.Unlock()
}

// Cleanup schedules removal of a session's persisted frames once the session
// is over. Key expiry would reclaim them eventually; this reclaims them now.
func (c *Cache) Cleanup(sessionID string) {
	if sessionID == "" || c.store == nil || c.pool == nil {
		return
	}

	err := c.pool.Submit(worker.Job{
		Name: "frame-cleanup",
		Run: func(ctx context.Context) error {
			return c.store.Delete(ctx, sessionID)
		},
	})
	if err != nil {
		c.logger.Warn("frame cleanup skipped", "session_id", sessionID, "error", err)
	}
}
