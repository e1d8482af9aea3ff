package realtime

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisBus fans room payloads out across processes with Redis Pub/Sub.
// Each process publishes to prefix+roomKey and pattern-subscribes to prefix*,
// so every registry sees every publication, including its own.
type RedisBus struct {
	client   *redis.Client
	prefix   string
	registry *Registry
	log      zerolog.Logger
	ready    chan struct{}
}

func NewRedisBus(client *redis.Client, prefix string, registry *Registry, log zerolog.Logger) *RedisBus {
	return &RedisBus{
		client:   client,
		prefix:   prefix,
		registry: registry,
		log:      log.With().Str("component", "redis_bus").Logger(),
		ready:    make(chan struct{}),
	}
}

var _ Bus = (*RedisBus)(nil)

func (b *RedisBus) Publish(ctx context.Context, roomKey string, payload []byte) error {
	if err := b.client.Publish(ctx, b.prefix+roomKey, payload).Err(); err != nil {
		return fmt.Errorf("redis bus: publish %s: %w", roomKey, err)
	}
	return nil
}

// Ready is closed once the pattern subscription is confirmed by the server.
func (b *RedisBus) Ready() <-chan struct{} { return b.ready }

func (b *RedisBus) Run(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, b.prefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis bus: subscribe: %w", err)
	}
	close(b.ready)
	b.log.Info().Str("pattern", b.prefix+"*").Msg("room bus subscribed")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			roomKey := strings.TrimPrefix(msg.Channel, b.prefix)
			b.registry.Broadcast(roomKey, []byte(msg.Payload))
		}
	}
}
