package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/seehear/assist-backend/internal/shared"
)

const defaultJobTimeout = 10 * time.Second

// Job is one fire-and-forget unit of background work (frame persistence,
// event-log appends). Jobs own copies of their inputs so they can outlive the
// connection that submitted them.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pool runs jobs on a fixed set of goroutines behind a bounded queue. Submit
// never blocks: when the queue is full the job is dropped and the caller gets
// shared.ErrQueueFull.
type Pool struct {
	jobs   chan Job
	logger *slog.Logger
	size   int

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewPool(size, buffer int, logger *slog.Logger) *Pool {
	if size <= 0 {
		size = 4
	}
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		jobs:   make(chan Job, buffer),
		logger: logger.With("component", "worker-pool"),
		size:   size,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for job := range p.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), defaultJobTimeout)
		if err := job.Run(ctx); err != nil {
			p.logger.Warn("background job failed", "job", job.Name, "error", err)
		}
		cancel()
	}
}

// Submit enqueues a job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return shared.ErrUnavailable
	}

	select {
	case p.jobs <- job:
		return nil
	default:
		p.logger.Warn("job queue full, dropping job", "job", job.Name)
		return shared.ErrQueueFull
	}
}

// Stop closes the queue and waits for queued jobs to drain until ctx expires,
// after which remaining work is abandoned.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool drain timed out, abandoning remaining jobs")
		return ctx.Err()
	}
}
