package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	application "legisflow/contexts/legislative-advocacy/review-service/application"
	"legisflow/contexts/legislative-advocacy/review-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/review-service/domain/errors"
	"legisflow/contexts/legislative-advocacy/review-service/ports"
)

type RegisterArtifactCommand struct {
	ArtifactID   string
	DocumentID   string
	ArtifactType string
	Title        string
}

// RegisterArtifactResult.Replayed is true when the artifact was already
// registered for the same document.
type RegisterArtifactResult struct {
	Artifact entities.ArtifactReview
	Replayed bool
}

type RegisterArtifactUseCase struct {
	Artifacts ports.ArtifactReviewRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc RegisterArtifactUseCase) Execute(ctx context.Context, cmd RegisterArtifactCommand) (RegisterArtifactResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	now := nowFrom(uc.Clock)
	item, err := entities.NewArtifactReview(cmd.ArtifactID, cmd.DocumentID, cmd.ArtifactType, cmd.Title, now)
	if err != nil {
		return RegisterArtifactResult{}, err
	}

	existing, err := uc.Artifacts.GetArtifact(ctx, item.ArtifactID)
	switch {
	case err == nil:
		return replayRegistration(existing, item)
	case !errors.Is(err, domainerrors.ErrNotFound):
		return RegisterArtifactResult{}, err
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return RegisterArtifactResult{}, err
	}
	event, err := newEnvelope(eventID, EventArtifactRegistered, item.DocumentID, now, map[string]any{
		"artifact_id":   item.ArtifactID,
		"document_id":   item.DocumentID,
		"artifact_type": item.ArtifactType,
		"title":         item.Title,
		"review_status": item.ReviewStatus,
	})
	if err != nil {
		return RegisterArtifactResult{}, err
	}

	if err := uc.Artifacts.CreateArtifact(ctx, item, event); err != nil {
		if errors.Is(err, domainerrors.ErrArtifactExists) {
			current, getErr := uc.Artifacts.GetArtifact(ctx, item.ArtifactID)
			if getErr == nil {
				return replayRegistration(current, item)
			}
		}
		return RegisterArtifactResult{}, err
	}

	logger.Info("artifact registered for review",
		"event", "review_artifact_registered",
		"module", "legislative-advocacy/review-service",
		"layer", "application",
		"artifact_id", item.ArtifactID,
		"document_id", item.DocumentID,
		"artifact_type", item.ArtifactType,
	)
	return RegisterArtifactResult{Artifact: item}, nil
}

func replayRegistration(existing entities.ArtifactReview, requested entities.ArtifactReview) (RegisterArtifactResult, error) {
	if existing.DocumentID != requested.DocumentID {
		return RegisterArtifactResult{}, fmt.Errorf("%w: %s belongs to %s",
			domainerrors.ErrArtifactExists, existing.ArtifactID, existing.DocumentID)
	}
	return RegisterArtifactResult{Artifact: existing, Replayed: true}, nil
}
