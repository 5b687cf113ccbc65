package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	contractsv1 "legisflow/contracts/gen/events/v1"
)

const envelopeField = "envelope"

// RedisStreams publishes events to one Redis stream per topic and consumes
// them through consumer groups. A message is acked only after its handler
// succeeded, so failed deliveries stay pending and are retried.
type RedisStreams struct {
	client       redis.UniversalClient
	prefix       string
	consumerName string
	block        time.Duration
	batch        int64
	logger       *slog.Logger
}

type RedisOption func(*RedisStreams)

// WithConsumerName fixes the consumer name inside each group. Defaults to
// the group name.
func WithConsumerName(name string) RedisOption {
	return func(r *RedisStreams) { r.consumerName = strings.TrimSpace(name) }
}

func WithBlock(block time.Duration) RedisOption {
	return func(r *RedisStreams) { r.block = block }
}

func NewRedisStreams(client redis.UniversalClient, prefix string, logger *slog.Logger, opts ...RedisOption) *RedisStreams {
	if logger == nil {
		logger = slog.Default()
	}
	r := &RedisStreams{
		client: client,
		prefix: strings.TrimSuffix(strings.TrimSpace(prefix), ":"),
		block:  2 * time.Second,
		batch:  32,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisStreams) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStreams) StreamKey(topic string) string {
	if r.prefix == "" {
		return "events:" + topic
	}
	return r.prefix + ":events:" + topic
}

func (r *RedisStreams) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	if err := event.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("messaging/redis: encode envelope: %w", err)
	}
	id, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.StreamKey(topic),
		Values: map[string]any{
			"event_id":    event.EventID,
			"event_type":  event.EventType,
			envelopeField: string(payload),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("messaging/redis: publish %s: %w", topic, err)
	}
	r.logger.Debug("event published",
		"event", "redis_stream_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"stream_id", id,
	)
	return nil
}

// Subscribe creates the consumer group if needed and consumes until ctx is
// done. Messages left pending by an earlier run of the same consumer are
// redelivered before new ones.
func (r *RedisStreams) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, contractsv1.Envelope) error,
) error {
	stream := r.StreamKey(topic)
	if err := r.client.XGroupCreateMkStream(ctx, stream, consumerGroup, "0").Err(); err != nil &&
		!strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("messaging/redis: create group %s on %s: %w", consumerGroup, stream, err)
	}
	consumer := r.consumerName
	if consumer == "" {
		consumer = consumerGroup
	}

	go r.consume(ctx, stream, topic, consumerGroup, consumer, handler)
	return nil
}

func (r *RedisStreams) consume(
	ctx context.Context,
	stream string,
	topic string,
	group string,
	consumer string,
	handler func(context.Context, contractsv1.Envelope) error,
) {
	// Page through this consumer's pending entries first, then switch to
	// new messages.
	cursor := "0"
	for ctx.Err() == nil {
		block := r.block
		if cursor != ">" {
			block = -1
		}
		streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: consumer,
			Streams:  []string{stream, cursor},
			Count:    r.batch,
			Block:    block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				cursor = ">"
				continue
			}
			if ctx.Err() != nil {
				return
			}
			r.logger.Error("stream read failed",
				"event", "redis_stream_read_failed",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"consumer_group", group,
				"error", err.Error(),
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		lastID := ""
		for _, s := range streams {
			for _, message := range s.Messages {
				lastID = message.ID
				r.handle(ctx, stream, topic, group, message, handler)
			}
		}
		if cursor != ">" {
			cursor = lastID
			if cursor == "" {
				cursor = ">"
			}
		}
	}
}

func (r *RedisStreams) handle(
	ctx context.Context,
	stream string,
	topic string,
	group string,
	message redis.XMessage,
	handler func(context.Context, contractsv1.Envelope) error,
) {
	raw, _ := message.Values[envelopeField].(string)
	var event contractsv1.Envelope
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		// Undecodable entries can never succeed; ack them so they stop
		// blocking the pending list.
		r.logger.Error("stream message decode failed",
			"event", "redis_stream_decode_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"stream_id", message.ID,
			"error", err.Error(),
		)
		r.ack(ctx, stream, group, message.ID)
		return
	}

	if err := handler(ctx, event); err != nil {
		r.logger.Error("consumer handler failed",
			"event", "redis_stream_consume_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"consumer_group", group,
			"event_id", event.EventID,
			"stream_id", message.ID,
			"error", err.Error(),
		)
		return
	}
	r.ack(ctx, stream, group, message.ID)
}

func (r *RedisStreams) ack(ctx context.Context, stream string, group string, id string) {
	if err := r.client.XAck(ctx, stream, group, id).Err(); err != nil {
		r.logger.Warn("stream ack failed",
			"event", "redis_stream_ack_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"stream_id", id,
			"error", err.Error(),
		)
	}
}
