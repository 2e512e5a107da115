// Package redis delivers events over Redis pub/sub for same-site consumers
// such as websocket fanout workers.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"clubhub/internal/notify"
)

const defaultChannel = "clubhub.events"

// Sink publishes JSON-encoded events on a Redis channel.
type Sink struct {
	client  *redis.Client
	channel string
}

func NewSink(client *redis.Client, channel string) *Sink {
	if channel == "" {
		channel = defaultChannel
	}
	return &Sink{client: client, channel: channel}
}

func (s *Sink) Deliver(ctx context.Context, e notify.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to redis: %w", err)
	}
	return nil
}
