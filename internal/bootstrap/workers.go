package bootstrap

import (
	"context"
	"log/slog"

	"github.com/seehear/assist-backend/internal/worker"
	"go.uber.org/fx"
)

func ProvideWorkerPool(cfg *Config, logger *slog.Logger) *worker.Pool {
	return worker.NewPool(cfg.WorkerPoolSize, cfg.WorkerQueueSize, logger)
}

// StartWorkerPool ties the pool to the application lifecycle. On shutdown the
// pool drains queued jobs until the stop context expires.
func StartWorkerPool(lc fx.Lifecycle, pool *worker.Pool) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pool.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return pool.Stop(ctx)
		},
	})
}

var WorkersModule = fx.Options(
	fx.Provide(ProvideWorkerPool),
	fx.Invoke(StartWorkerPool),
)
