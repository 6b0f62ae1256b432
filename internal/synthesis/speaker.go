package synthesis

import (
	"context"
	"fmt"
	"log/slog"
)

// BlobStore is the slice of the object store the speaker needs.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	PresignedURL(ctx context.Context, key string) (string, error)
}

// Speaker turns answer text into a stored audio object and returns a
// time-limited URL for it.
type Speaker struct {
	client *Client
	store  BlobStore
	logger *slog.Logger
}

func NewSpeaker(client *Client, store BlobStore, logger *slog.Logger) *Speaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Speaker{
		client: client,
		store:  store,
		logger: logger.With("component", "speaker"),
	}
}

// SynthesizeAndStore synthesizes text, uploads the audio under key and
// returns a presigned URL for it.
func (s *Speaker) SynthesizeAndStore(ctx context.Context, text, key string) (string, error) {
	audio, err := s.client.Synthesize(ctx, text)
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}

	if err := s.store.Upload(ctx, key, audio, "audio/mpeg"); err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}

	url, err := s.store.PresignedURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("presign audio: %w", err)
	}

	s.logger.Debug("audio stored", "key", key, "bytes", len(audio))
	return url, nil
}
