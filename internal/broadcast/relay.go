package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/FerryF19999/chatinterface/internal/metrics"
)

// relayBuffer bounds the publish backlog. Overflow drops the event with a
// logged error; relay consumers dedupe by entity id anyway.
const relayBuffer = 1024

// EventsChannel returns the Redis pub/sub channel all events are published to.
func EventsChannel() string {
	return "chat:events"
}

// relayClient is the slice of the Redis API the relay uses. Satisfied by
// redis.Client; tests substitute a recorder.
type relayClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisRelay implements Broadcaster by publishing every event to one shared
// Redis channel. Delivery to subscribers is at-least-once with no ordering
// guarantee across distinct subscribers; events from this process reach each
// subscriber in publish order.
type RedisRelay struct {
	client relayClient
	queue  chan Event
	logger zerolog.Logger
	done   chan struct{}
}

// NewRedisRelay connects to Redis, verifies the connection, and starts the
// publish loop.
func NewRedisRelay(ctx context.Context, redisURL string, logger zerolog.Logger) (*RedisRelay, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	r := &RedisRelay{
		client: client,
		queue:  make(chan Event, relayBuffer),
		logger: logger,
		done:   make(chan struct{}),
	}
	go r.run(ctx)
	return r, nil
}

// Emit queues the event for publication. Never blocks; the queue preserves
// emission order.
func (r *RedisRelay) Emit(event string, payload any) {
	select {
	case r.queue <- Event{Name: event, Data: payload}:
		metrics.EventsEmitted.WithLabelValues(event).Inc()
	default:
		r.logger.Error().Str("event", event).Msg("relay queue full, event dropped")
	}
}

func (r *RedisRelay) run(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-r.queue:
			data, err := json.Marshal(e)
			if err != nil {
				r.logger.Error().Err(err).Str("event", e.Name).Msg("relay marshal failed")
				continue
			}
			if err := r.client.Publish(ctx, EventsChannel(), data).Err(); err != nil {
				r.logger.Error().Err(err).Str("event", e.Name).Msg("relay publish failed")
			}
		}
	}
}

// Close waits for the publish loop to stop and closes the Redis connection.
func (r *RedisRelay) Close() error {
	<-r.done
	return r.client.Close()
}

// Ping checks the Redis connection.
func (r *RedisRelay) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
