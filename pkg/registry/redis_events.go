// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// redisWireEvent is the JSON shape mutation events travel as on the wire.
// Kind is the lowercase EventKind.String() value.
type redisWireEvent struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Tag      string `json:"tag"`
	Endpoint string `json:"endpoint,omitempty"`
}

// RedisEventProducer subscribes to a Redis pub/sub channel carrying
// out-of-process mutation events and republishes each one onto an
// in-process EventBus, giving every proxy instance in a fleet a consistent
// view without each one polling Redis directly.
type RedisEventProducer struct {
	client  *redis.Client
	channel string
	logger  zerolog.Logger
}

// NewRedisEventProducer connects to addr and prepares to relay channel.
func NewRedisEventProducer(addr, channel string, logger zerolog.Logger) *RedisEventProducer {
	return &RedisEventProducer{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		channel: channel,
		logger:  logger.With().Str("component", "redis_events").Logger(),
	}
}

// Run subscribes to the Redis channel and republishes every well-formed
// message onto bus until ctx is cancelled.
func (p *RedisEventProducer) Run(ctx context.Context, bus *EventBus) error {
	sub := p.client.Subscribe(ctx, p.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis events: subscribe %s: %w", p.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			p.relay(bus, msg.Payload)
		}
	}
}

func (p *RedisEventProducer) relay(bus *EventBus, payload string) {
	var wire redisWireEvent
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		p.logger.Error().Err(err).Msg("dropping malformed redis event")
		return
	}

	switch wire.Kind {
	case EventCreateOrUpdate.String():
		bus.Publish(NewCreateOrUpdateEvent(wire.Name, wire.Tag, wire.Endpoint))
	case EventDelete.String():
		bus.Publish(NewDeleteEvent(wire.Name, wire.Tag))
	default:
		p.logger.Error().Str("kind", wire.Kind).Msg("dropping redis event with unknown kind")
	}
}

// Close releases the underlying Redis client.
func (p *RedisEventProducer) Close() error {
	return p.client.Close()
}
