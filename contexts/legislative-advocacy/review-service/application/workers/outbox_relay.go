package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "legisflow/contexts/legislative-advocacy/review-service/application"
	"legisflow/contexts/legislative-advocacy/review-service/ports"
)

// OutboxRelay publishes review events oldest first. A document whose event
// fails is held until the next cycle so its review history stays ordered.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("review outbox list failed",
			"event", "review_outbox_list_failed",
			"module", "legislative-advocacy/review-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	var firstErr error
	heldDocuments := make(map[string]struct{})
	published := 0
	for _, row := range pending {
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if _, held := heldDocuments[event.PartitionKey]; held {
			continue
		}

		topic := event.EventType
		if topic == "" {
			topic = row.EventType
		}
		err := r.Publisher.Publish(ctx, topic, event)
		if err == nil {
			err = r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now)
		}
		if err != nil {
			logger.Error("review outbox publish failed",
				"event", "review_outbox_publish_failed",
				"module", "legislative-advocacy/review-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"document_id", event.PartitionKey,
				"topic", topic,
				"error", err.Error(),
			)
			heldDocuments[event.PartitionKey] = struct{}{}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		published++
	}

	if published > 0 {
		logger.Info("review outbox relay cycle completed",
			"event", "review_outbox_relay_completed",
			"module", "legislative-advocacy/review-service",
			"layer", "worker",
			"published_count", published,
		)
	}
	return firstErr
}
