package queries

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	application "legisflow/contexts/legislative-advocacy/review-service/application"
	"legisflow/contexts/legislative-advocacy/review-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/review-service/domain/errors"
	"legisflow/contexts/legislative-advocacy/review-service/ports"
)

type DocumentReviews struct {
	DocumentID string
	Artifacts  []entities.ArtifactReview
	Summary    entities.DocumentReviewSummary
}

// GetDocumentReviewsUseCase returns every artifact of a document together
// with its aggregate. An unknown document yields an empty result.
type GetDocumentReviewsUseCase struct {
	Artifacts ports.ArtifactReviewRepository
	Logger    *slog.Logger
}

func (uc GetDocumentReviewsUseCase) Execute(ctx context.Context, documentID string) (DocumentReviews, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return DocumentReviews{}, fmt.Errorf("%w: document_id is required", domainerrors.ErrInvalidArtifactInput)
	}
	items, err := uc.Artifacts.ListArtifacts(ctx, ports.ArtifactFilter{DocumentID: documentID})
	if err != nil {
		application.ResolveLogger(uc.Logger).Error("document reviews lookup failed",
			"event", "review_document_lookup_failed",
			"module", "legislative-advocacy/review-service",
			"layer", "application",
			"document_id", documentID,
			"error", err.Error(),
		)
		return DocumentReviews{}, err
	}
	return DocumentReviews{
		DocumentID: documentID,
		Artifacts:  items,
		Summary:    entities.Summarize(documentID, items),
	}, nil
}

type ListDocumentSummariesUseCase struct {
	Artifacts ports.ArtifactReviewRepository
}

// Execute returns one summary per document that has artifacts, ordered by
// document id.
func (uc ListDocumentSummariesUseCase) Execute(ctx context.Context) ([]entities.DocumentReviewSummary, error) {
	items, err := uc.Artifacts.ListArtifacts(ctx, ports.ArtifactFilter{})
	if err != nil {
		return nil, err
	}
	byDocument := make(map[string][]entities.ArtifactReview)
	for _, item := range items {
		byDocument[item.DocumentID] = append(byDocument[item.DocumentID], item)
	}
	summaries := make([]entities.DocumentReviewSummary, 0, len(byDocument))
	for documentID, group := range byDocument {
		summaries = append(summaries, entities.Summarize(documentID, group))
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].DocumentID < summaries[j].DocumentID
	})
	return summaries, nil
}
