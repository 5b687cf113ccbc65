package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "legisflow/contexts/legislative-advocacy/workflow-service/application"
	"legisflow/contexts/legislative-advocacy/workflow-service/application/commands"
	domainerrors "legisflow/contexts/legislative-advocacy/workflow-service/domain/errors"
	"legisflow/contexts/legislative-advocacy/workflow-service/ports"
)

const (
	CampaignCreatedTopic         = "campaign.created"
	defaultCampaignConsumerGroup = "workflow-service-campaign-created-cg"
)

// CampaignCreatedConsumer starts a workflow for every new campaign.
type CampaignCreatedConsumer struct {
	Subscriber    ports.EventSubscriber
	Initialize    commands.InitializeWorkflowUseCase
	Dedup         ports.EventDedupStore
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Logger        *slog.Logger
}

func (c CampaignCreatedConsumer) Start(ctx context.Context) error {
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultCampaignConsumerGroup
	}
	return c.Subscriber.Subscribe(ctx, CampaignCreatedTopic, group, c.Handle)
}

// Handle reserves the event, then initializes the workflow. A failed
// initialization releases the reservation so the redelivered event is
// applied instead of being treated as already processed.
func (c CampaignCreatedConsumer) Handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}

	alreadyProcessed, err := c.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), now.Add(c.dedupTTL()))
	if err != nil {
		logger.Error("campaign.created dedupe failed",
			"event", "workflow_campaign_created_dedupe_failed",
			"module", "legislative-advocacy/workflow-service",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if alreadyProcessed {
		return nil
	}

	if err := c.apply(ctx, logger, event); err != nil {
		if releaseErr := c.Dedup.ReleaseEvent(ctx, event.EventID); releaseErr != nil {
			logger.Error("campaign.created dedupe release failed",
				"event", "workflow_campaign_created_release_failed",
				"module", "legislative-advocacy/workflow-service",
				"layer", "worker",
				"event_id", event.EventID,
				"error", releaseErr.Error(),
			)
		}
		return err
	}
	return nil
}

func (c CampaignCreatedConsumer) apply(ctx context.Context, logger *slog.Logger, event ports.EventEnvelope) error {
	var payload struct {
		CampaignID string `json:"campaign_id"`
		CreatedBy  string `json:"created_by"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode campaign.created payload: %w", err)
	}
	if strings.TrimSpace(payload.CampaignID) == "" {
		return fmt.Errorf("campaign.created payload missing campaign_id")
	}

	result, err := c.Initialize.Execute(ctx, commands.InitializeWorkflowCommand{
		CampaignID:  payload.CampaignID,
		RequestedBy: payload.CreatedBy,
	})
	if errors.Is(err, domainerrors.ErrWorkflowExists) {
		logger.Debug("campaign workflow already present",
			"event", "workflow_campaign_created_existing",
			"module", "legislative-advocacy/workflow-service",
			"layer", "worker",
			"event_id", event.EventID,
			"campaign_id", payload.CampaignID,
		)
		return nil
	}
	if err != nil {
		logger.Error("campaign.created initialization failed",
			"event", "workflow_campaign_created_failed",
			"module", "legislative-advocacy/workflow-service",
			"layer", "worker",
			"event_id", event.EventID,
			"campaign_id", payload.CampaignID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("campaign.created applied",
		"event", "workflow_campaign_created_applied",
		"module", "legislative-advocacy/workflow-service",
		"layer", "worker",
		"event_id", event.EventID,
		"campaign_id", result.Workflow.CampaignID,
		"state_id", result.Workflow.CurrentStateID,
	)
	return nil
}

func (c CampaignCreatedConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.DedupTTL
}

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
