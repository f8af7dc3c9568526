package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Publisher publishes habit events to Redis Streams. Publishing is
// best-effort from the caller's point of view; a failed publish never fails
// the request that triggered it.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher creates a Publisher from a Redis URL.
func NewPublisher(redisURL string) (*Publisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return &Publisher{rdb: redis.NewClient(opts)}, nil
}

// PublishSessionCompleted appends a session-completed event to the stream and
// returns the stream message ID. An empty EventID is filled in.
func (p *Publisher) PublishSessionCompleted(ctx context.Context, ev SessionCompleted) (string, error) {
	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	result := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamSessionCompleted,
		MaxLen: 10000,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"payload":        string(payload),
			"published_at":   time.Now().Unix(),
			"schema_version": SchemaVersionV1,
		},
	})
	if result.Err() != nil {
		return "", fmt.Errorf("failed to publish to stream: %w", result.Err())
	}

	return result.Val(), nil
}

// Close closes the Redis client connection.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
