package bootstrap

import (
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/seehear/assist-backend/internal/audio"
	"github.com/seehear/assist-backend/internal/chat"
	"github.com/seehear/assist-backend/internal/eventlog"
	"github.com/seehear/assist-backend/internal/gateway"
	"github.com/seehear/assist-backend/internal/health"
	"github.com/seehear/assist-backend/internal/pipeline"
	"github.com/seehear/assist-backend/internal/storage"
	"github.com/seehear/assist-backend/internal/synthesis"
	"github.com/seehear/assist-backend/internal/vision"
	"github.com/seehear/assist-backend/internal/worker"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const version = "1.0.0"

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideCaptionClient(cfg *Config) *vision.Client {
	return vision.NewClient(vision.Config{
		CaptionURL: cfg.CaptionURL,
		Model:      cfg.CaptionModel,
		Timeout:    cfg.CaptionTimeout,
		FrameTTL:   cfg.FrameTTL,
	})
}

func ProvideChatConfig(cfg *Config) chat.Config {
	return chat.Config{
		APIKey:  cfg.ChatAPIKey,
		BaseURL: cfg.ChatBaseURL,
		Model:   cfg.ChatModel,
		Timeout: cfg.ChatTimeout,
	}
}

func ProvideChatClient(chatCfg chat.Config) *chat.Client {
	return chat.NewClient(chatCfg)
}

func ProvideTTSClient(cfg *Config) *synthesis.Client {
	return synthesis.NewClient(synthesis.Config{
		URL:   cfg.TTSURL,
		Voice: cfg.TTSVoice,
	})
}

func ProvideSpeaker(client *synthesis.Client, blobs *storage.S3Store, logger *slog.Logger) *synthesis.Speaker {
	return synthesis.NewSpeaker(client, blobs, logger)
}

func ProvideEventAppender(store *eventlog.Store, pool *worker.Pool, logger *slog.Logger) eventlog.Appender {
	return eventlog.NewAsyncAppender(store, pool, logger)
}

func ProvideFrameCache(store *vision.Store, pool *worker.Pool, logger *slog.Logger) *vision.Cache {
	return vision.NewCache(store, pool, logger)
}

func ProvidePipeline(
	captioner *vision.Client,
	chatClient *chat.Client,
	speaker *synthesis.Speaker,
	events eventlog.Appender,
	logger *slog.Logger,
) *pipeline.Pipeline {
	return pipeline.New(captioner, chatClient, speaker, events, logger)
}

func ProvideConnectionManager() *gateway.Manager {
	return gateway.NewManager()
}

func ProvideGatewayHandler(
	frames *vision.Cache,
	pipe *pipeline.Pipeline,
	events eventlog.Appender,
	manager *gateway.Manager,
	logger *slog.Logger,
) *gateway.Handler {
	return gateway.NewHandler(frames, pipe, events, manager, logger)
}

func ProvideEventLogHandler(store *eventlog.Store) *eventlog.Handler {
	return eventlog.NewHandler(store)
}

func ProvideFrameHandler(store *vision.Store, logger *slog.Logger) *vision.Handler {
	return vision.NewHandler(store, logger)
}

func ProvideAudioHandler(blobs *storage.S3Store, logger *slog.Logger) *audio.Handler {
	return audio.NewHandler(blobs, logger)
}

func ProvideHealthHandler(
	db *gorm.DB,
	redisClient *redis.Client,
	blobs *storage.S3Store,
	captioner *vision.Client,
	chatCfg chat.Config,
	tts *synthesis.Client,
	manager *gateway.Manager,
) *health.Handler {
	return health.NewHandler(db, redisClient, blobs, captioner, chatCfg, tts, manager, version)
}

func requestCountMiddleware(h *health.Handler) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h.IncrementRequests()
			return next(c)
		}
	}
}

type HandlerParams struct {
	fx.In

	GatewayHandler  *gateway.Handler
	EventLogHandler *eventlog.Handler
	FrameHandler    *vision.Handler
	AudioHandler    *audio.Handler
	HealthHandler   *health.Handler
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	e.Use(requestCountMiddleware(params.HealthHandler))

	params.GatewayHandler.RegisterRoutes(e)
	params.EventLogHandler.RegisterRoutes(e)
	params.FrameHandler.RegisterRoutes(e)
	params.AudioHandler.RegisterRoutes(e)
	params.HealthHandler.RegisterRoutes(e)
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideCaptionClient,
		ProvideChatConfig,
		ProvideChatClient,
		ProvideTTSClient,
		ProvideSpeaker,
		ProvideEventAppender,
		ProvideFrameCache,
		ProvidePipeline,
		ProvideConnectionManager,
		ProvideGatewayHandler,
		ProvideEventLogHandler,
		ProvideFrameHandler,
		ProvideAudioHandler,
		ProvideHealthHandler,
	),
	fx.Invoke(RegisterRoutes),
)
