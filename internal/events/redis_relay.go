package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher is the slice of the Redis client the relay needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisRelay forwards committed events to a Redis pub/sub channel as JSON.
type RedisRelay struct {
	client  Publisher
	channel string
}

// NewRedisRelay builds a relay publishing on channel.
func NewRedisRelay(client Publisher, channel string) *RedisRelay {
	return &RedisRelay{client: client, channel: channel}
}

// Handle is an EventHandler.
func (r *RedisRelay) Handle(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	if err := r.client.Publish(ctx, r.channel, body).Err(); err != nil {
		return fmt.Errorf("relay event %s: %w", event.ID, err)
	}
	return nil
}

// Register subscribes the relay to every event type.
func (r *RedisRelay) Register(d Dispatcher) {
	d.Subscribe(r.Handle)
}
