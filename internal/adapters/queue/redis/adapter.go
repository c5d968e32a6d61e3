package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"bambu.printjobs/internal/core/domain"
	"bambu.printjobs/internal/core/logger"
)

const (
	EventChannel = "printjobs:events"
)

// RedisAdapter fans invocation events and job snapshots out over Redis
// pub/sub so several service instances share one event stream.
type RedisAdapter struct {
	client  *redis.Client
	channel string
}

func NewRedisAdapter(url string) (*RedisAdapter, *redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	return NewRedisAdapterFromClient(client), client, nil
}

func NewRedisAdapterFromClient(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client, channel: EventChannel}
}

// PublishEvent implements ports.EventPublisher.
func (r *RedisAdapter) PublishEvent(ctx context.Context, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, data).Err()
}

// PushSnapshot implements ports.SnapshotSink.
func (r *RedisAdapter) PushSnapshot(ctx context.Context, jobs []domain.PrintJob) {
	if err := r.PublishEvent(ctx, domain.NewSnapshotEvent(jobs)); err != nil {
		logger.WarnContext(ctx, "Failed to publish job snapshot", "error", err)
	}
}

// SubscribeEvents implements ports.EventSubscriber. The channel closes when
// ctx is done.
func (r *RedisAdapter) SubscribeEvents(ctx context.Context) (<-chan domain.Event, error) {
	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}

	ch := make(chan domain.Event)
	go func() {
		defer pubsub.Close()
		defer close(ch)

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event domain.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					logger.Warn("Dropping malformed event", "error", err)
					continue
				}
				select {
				case ch <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
