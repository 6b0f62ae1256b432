package bootstrap

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	S3Bucket   string
	S3Region   string
	S3Endpoint string
	AudioTTL   time.Duration

	CaptionURL     string
	CaptionModel   string
	CaptionTimeout time.Duration
	FrameTTL       time.Duration

	ChatAPIKey  string
	ChatBaseURL string
	ChatModel   string
	ChatTimeout time.Duration

	TTSURL   string
	TTSVoice string

	WorkerPoolSize  int
	WorkerQueueSize int
}

func LoadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DatabaseDSN: getEnv("DATABASE_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       0,

		S3Bucket:   getEnv("S3_BUCKET", ""),
		S3Region:   getEnv("S3_REGION", "us-east-1"),
		S3Endpoint: getEnv("S3_ENDPOINT", ""),
		AudioTTL:   getEnvDuration("AUDIO_URL_TTL", time.Hour),

		CaptionURL:     getEnv("CAPTION_URL", "http://localhost:11434"),
		CaptionModel:   getEnv("CAPTION_MODEL", "llava"),
		CaptionTimeout: getEnvDuration("CAPTION_TIMEOUT", 10*time.Second),
		FrameTTL:       getEnvDuration("FRAME_TTL", 10*time.Minute),

		ChatAPIKey:  getEnv("CHAT_API_KEY", ""),
		ChatBaseURL: getEnv("CHAT_BASE_URL", "https://api.openai.com"),
		ChatModel:   getEnv("CHAT_MODEL", "gpt-4o-mini"),
		ChatTimeout: getEnvDuration("CHAT_TIMEOUT", 10*time.Second),

		TTSURL:   getEnv("TTS_URL", "http://localhost:8880"),
		TTSVoice: getEnv("TTS_VOICE", "af_heart"),

		WorkerPoolSize:  getEnvInt("WORKER_POOL_SIZE", 4),
		WorkerQueueSize: getEnvInt("WORKER_QUEUE_SIZE", 256),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
