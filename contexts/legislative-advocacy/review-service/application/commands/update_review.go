package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "legisflow/contexts/legislative-advocacy/review-service/application"
	"legisflow/contexts/legislative-advocacy/review-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/review-service/domain/errors"
	"legisflow/contexts/legislative-advocacy/review-service/ports"
)

type UpdateReviewCommand struct {
	ArtifactID string
	Status     string
	ReviewedBy string
	Notes      string
	// ExpectedStatus, when set, must match the stored status.
	ExpectedStatus string
}

type UpdateReviewUseCase struct {
	Artifacts ports.ArtifactReviewRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc UpdateReviewUseCase) Execute(ctx context.Context, cmd UpdateReviewCommand) (entities.ArtifactReview, error) {
	logger := application.ResolveLogger(uc.Logger)
	artifactID := strings.TrimSpace(cmd.ArtifactID)
	if artifactID == "" {
		return entities.ArtifactReview{}, fmt.Errorf("%w: artifact_id is required", domainerrors.ErrInvalidArtifactInput)
	}
	status, err := entities.ParseReviewStatus(cmd.Status)
	if err != nil {
		return entities.ArtifactReview{}, err
	}
	if err := entities.ValidateReviewInput(status, cmd.ReviewedBy, cmd.Notes); err != nil {
		return entities.ArtifactReview{}, err
	}
	var expected entities.ReviewStatus
	if strings.TrimSpace(cmd.ExpectedStatus) != "" {
		expected, err = entities.ParseReviewStatus(cmd.ExpectedStatus)
		if err != nil {
			return entities.ArtifactReview{}, err
		}
	}

	current, err := uc.Artifacts.GetArtifact(ctx, artifactID)
	if err != nil {
		return entities.ArtifactReview{}, err
	}
	if expected != "" && current.ReviewStatus != expected {
		return entities.ArtifactReview{}, fmt.Errorf("%w: %s is %s, expected %s",
			domainerrors.ErrStatusMismatch, artifactID, current.ReviewStatus, expected)
	}

	now := nowFrom(uc.Clock)
	updated, err := current.ApplyReview(status, cmd.ReviewedBy, cmd.Notes, now)
	if err != nil {
		return entities.ArtifactReview{}, err
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.ArtifactReview{}, err
	}
	data := map[string]any{
		"artifact_id":     updated.ArtifactID,
		"document_id":     updated.DocumentID,
		"previous_status": current.ReviewStatus,
		"review_status":   updated.ReviewStatus,
		"updated_at":      now,
	}
	if updated.ReviewedBy != nil {
		data["reviewed_by"] = *updated.ReviewedBy
	}
	event, err := newEnvelope(eventID, EventArtifactReviewUpdated, updated.DocumentID, now, data)
	if err != nil {
		return entities.ArtifactReview{}, err
	}

	if err := uc.Artifacts.SaveReview(ctx, updated, current.Version, event); err != nil {
		logger.Warn("artifact review update failed",
			"event", "review_artifact_update_failed",
			"module", "legislative-advocacy/review-service",
			"layer", "application",
			"artifact_id", artifactID,
			"error", err.Error(),
		)
		return entities.ArtifactReview{}, err
	}

	logger.Info("artifact review updated",
		"event", "review_artifact_updated",
		"module", "legislative-advocacy/review-service",
		"layer", "application",
		"artifact_id", updated.ArtifactID,
		"document_id", updated.DocumentID,
		"from_status", current.ReviewStatus,
		"to_status", updated.ReviewStatus,
	)
	return updated, nil
}
