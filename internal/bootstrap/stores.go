package bootstrap

import (
	"github.com/redis/go-redis/v9"
	"github.com/seehear/assist-backend/internal/eventlog"
	"github.com/seehear/assist-backend/internal/vision"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideEventStore(db *gorm.DB) *eventlog.Store {
	return eventlog.NewStore(db)
}

func ProvideFrameStore(redisClient *redis.Client, cfg *Config) *vision.Store {
	return vision.NewStore(redisClient, cfg.FrameTTL)
}

func RunMigrations(eventStore *eventlog.Store) error {
	return eventStore.Migrate()
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideEventStore,
		ProvideFrameStore,
	),
	fx.Invoke(RunMigrations),
)
