package vision

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/seehear/assist-backend/internal/shared"
)

// Store persists session frames to Redis, keyed by capture timestamp. Frames
// are written best-effort from the worker pool and expire with the key's TTL.
type Store struct {
	redis    *redis.Client
	frameTTL time.Duration
}

func NewStore(redisClient *redis.Client, frameTTL time.Duration) *Store {
	if frameTTL == 0 {
		frameTTL = 10 * time.Minute
	}
	return &Store{
		redis:    redisClient,
		frameTTL: frameTTL,
	}
}

func frameKey(sessionID string) string {
	return fmt.Sprintf("frames:%s", sessionID)
}

func (s *Store) Save(ctx context.Context, frame *Frame) error {
	member := redis.Z{
		Score:  float64(frame.Timestamp),
		Member: frame.Data,
	}

	pipe := s.redis.Pipeline()
	pipe.ZAdd(ctx, frameKey(frame.SessionID), member)
	pipe.Expire(ctx, frameKey(frame.SessionID), s.frameTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Latest returns the most recent persisted frame for a session, or
// shared.ErrNotFound when none exist.
func (s *Store) Latest(ctx context.Context, sessionID string) (*Frame, error) {
	results, err := s.redis.ZRevRangeWithScores(ctx, frameKey(sessionID), 0, 0).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, shared.ErrNotFound
	}

	data, ok := results[0].Member.(string)
	if !ok {
		return nil, fmt.Errorf("invalid frame data type")
	}

	return &Frame{
		SessionID: sessionID,
		Timestamp: int64(results[0].Score),
		Data:      []byte(data),
	}, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, frameKey(sessionID)).Err()
}
