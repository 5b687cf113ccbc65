package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "legisflow/contexts/legislative-advocacy/workflow-service/application"
	"legisflow/contexts/legislative-advocacy/workflow-service/ports"
)

// OutboxRelay moves pending workflow events from the outbox onto the bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes one batch oldest first. Once a campaign's event fails to
// publish, that campaign's later rows wait for the next cycle so consumers
// never see its transitions out of order; other campaigns keep flowing. The
// first failure is returned after the batch has been walked.
func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("workflow outbox list failed",
			"event", "workflow_outbox_list_failed",
			"module", "legislative-advocacy/workflow-service",
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
	held := make(map[string]struct{})
	published := 0
	for _, row := range pending {
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("workflow outbox decode failed",
				"event", "workflow_outbox_decode_failed",
				"module", "legislative-advocacy/workflow-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if _, blocked := held[event.PartitionKey]; blocked {
			continue
		}

		topic := event.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("workflow outbox publish failed",
				"event", "workflow_outbox_publish_failed",
				"module", "legislative-advocacy/workflow-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_id", event.EventID,
				"campaign_id", event.PartitionKey,
				"topic", topic,
				"error", err.Error(),
			)
			held[event.PartitionKey] = struct{}{}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		// A row published but not marked is sent again next cycle; consumers
		// dedupe by event id.
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("workflow outbox mark published failed",
				"event", "workflow_outbox_mark_published_failed",
				"module", "legislative-advocacy/workflow-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			held[event.PartitionKey] = struct{}{}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		published++
	}

	if published > 0 || len(held) > 0 {
		logger.Info("workflow outbox relay cycle completed",
			"event", "workflow_outbox_relay_completed",
			"module", "legislative-advocacy/workflow-service",
			"layer", "worker",
			"published_count", published,
			"held_campaigns", len(held),
		)
	}
	return firstErr
}
