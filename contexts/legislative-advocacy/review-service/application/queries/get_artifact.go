package queries

import (
	"context"
	"fmt"
	"strings"

	"legisflow/contexts/legislative-advocacy/review-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/review-service/domain/errors"
	"legisflow/contexts/legislative-advocacy/review-service/ports"
)

type GetArtifactUseCase struct {
	Artifacts ports.ArtifactReviewRepository
}

func (uc GetArtifactUseCase) Execute(ctx context.Context, artifactID string) (entities.ArtifactReview, error) {
	artifactID = strings.TrimSpace(artifactID)
	if artifactID == "" {
		return entities.ArtifactReview{}, fmt.Errorf("%w: artifact_id is required", domainerrors.ErrInvalidArtifactInput)
	}
	return uc.Artifacts.GetArtifact(ctx, artifactID)
}
