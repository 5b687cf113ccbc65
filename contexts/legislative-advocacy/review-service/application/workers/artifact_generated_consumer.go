package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "legisflow/contexts/legislative-advocacy/review-service/application"
	"legisflow/contexts/legislative-advocacy/review-service/application/commands"
	"legisflow/contexts/legislative-advocacy/review-service/ports"
)

const (
	ArtifactGeneratedTopic           = "document.artifact_generated"
	defaultArtifactGeneratedConsumer = "review-service-artifact-generated-cg"
)

// ArtifactGeneratedConsumer registers every generated artifact for review.
type ArtifactGeneratedConsumer struct {
	Subscriber    ports.EventSubscriber
	Register      commands.RegisterArtifactUseCase
	Dedup         ports.EventDedupStore
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Logger        *slog.Logger
}

func (c ArtifactGeneratedConsumer) Start(ctx context.Context) error {
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultArtifactGeneratedConsumer
	}
	return c.Subscriber.Subscribe(ctx, ArtifactGeneratedTopic, group, c.Handle)
}

func (c ArtifactGeneratedConsumer) Handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}
	ttl := c.DedupTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	sum := sha256.Sum256(event.Data)
	alreadyProcessed, err := c.Dedup.ReserveEvent(ctx, event.EventID, hex.EncodeToString(sum[:]), now.Add(ttl))
	if err != nil {
		return err
	}
	if alreadyProcessed {
		return nil
	}

	if err := c.apply(ctx, logger, event); err != nil {
		// Release so the redelivered event registers the artifact.
		if releaseErr := c.Dedup.ReleaseEvent(ctx, event.EventID); releaseErr != nil {
			logger.Error("artifact event dedupe release failed",
				"event", "review_artifact_generated_release_failed",
				"module", "legislative-advocacy/review-service",
				"layer", "worker",
				"event_id", event.EventID,
				"error", releaseErr.Error(),
			)
		}
		return err
	}
	return nil
}

func (c ArtifactGeneratedConsumer) apply(ctx context.Context, logger *slog.Logger, event ports.EventEnvelope) error {
	var payload struct {
		ArtifactID   string `json:"artifact_id"`
		DocumentID   string `json:"document_id"`
		ArtifactType string `json:"artifact_type"`
		Title        string `json:"title"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode document.artifact_generated payload: %w", err)
	}

	result, err := c.Register.Execute(ctx, commands.RegisterArtifactCommand{
		ArtifactID:   payload.ArtifactID,
		DocumentID:   payload.DocumentID,
		ArtifactType: payload.ArtifactType,
		Title:        payload.Title,
	})
	if err != nil {
		logger.Error("artifact registration from event failed",
			"event", "review_artifact_generated_failed",
			"module", "legislative-advocacy/review-service",
			"layer", "worker",
			"event_id", event.EventID,
			"artifact_id", payload.ArtifactID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("document.artifact_generated applied",
		"event", "review_artifact_generated_applied",
		"module", "legislative-advocacy/review-service",
		"layer", "worker",
		"event_id", event.EventID,
		"artifact_id", result.Artifact.ArtifactID,
		"replayed", result.Replayed,
	)
	return nil
}
