package eventlog

import (
	"context"
	"log/slog"
	"time"

	"github.com/seehear/assist-backend/internal/shared"
	"github.com/seehear/assist-backend/internal/worker"
)

// Recorder is the write half of the event store.
type Recorder interface {
	Record(ctx context.Context, event *Event) error
}

// AsyncAppender queues event writes on the worker pool. Appends never block
// the caller and never fail it: a full queue or a failed write is logged and
// dropped.
type AsyncAppender struct {
	store  Recorder
	pool   *worker.Pool
	logger *slog.Logger
}

var _ Appender = (*AsyncAppender)(nil)

func NewAsyncAppender(store Recorder, pool *worker.Pool, logger *slog.Logger) *AsyncAppender {
	if logger == nil {
		logger = slog.Default()
	}
	return &AsyncAppender{
		store:  store,
		pool:   pool,
		logger: logger.With("component", "eventlog"),
	}
}

func (a *AsyncAppender) Append(_ context.Context, sessionID, eventType string, payload map[string]any) {
	event := &Event{
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Payload:   shared.JSONMap(payload),
	}

	err := a.pool.Submit(worker.Job{
		Name: "event-append",
		Run: func(ctx context.Context) error {
			return a.store.Record(ctx, event)
		},
	})
	if err != nil {
		a.logger.Warn("event append dropped",
			"session_id", sessionID,
			"event_type", eventType,
			"error", err)
	}
}
