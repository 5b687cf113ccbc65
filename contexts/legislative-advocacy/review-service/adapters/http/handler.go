package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"legisflow/contexts/legislative-advocacy/review-service/application/commands"
	"legisflow/contexts/legislative-advocacy/review-service/application/queries"
	"legisflow/contexts/legislative-advocacy/review-service/domain/entities"
	httptransport "legisflow/contexts/legislative-advocacy/review-service/transport/http"
)

type Handler struct {
	RegisterArtifact      commands.RegisterArtifactUseCase
	UpdateReview          commands.UpdateReviewUseCase
	GetArtifact           queries.GetArtifactUseCase
	GetDocumentReviews    queries.GetDocumentReviewsUseCase
	ListDocumentSummaries queries.ListDocumentSummariesUseCase
	Logger                *slog.Logger
}

func (h Handler) RegisterArtifactHandler(
	ctx context.Context,
	req httptransport.RegisterArtifactRequest,
) (httptransport.RegisterArtifactResponse, error) {
	result, err := h.RegisterArtifact.Execute(ctx, commands.RegisterArtifactCommand{
		ArtifactID:   req.ArtifactID,
		DocumentID:   req.DocumentID,
		ArtifactType: req.ArtifactType,
		Title:        req.Title,
	})
	if err != nil {
		return httptransport.RegisterArtifactResponse{}, err
	}
	return httptransport.RegisterArtifactResponse{
		Artifact: mapArtifact(result.Artifact),
		Replayed: result.Replayed,
	}, nil
}

func (h Handler) GetArtifactHandler(ctx context.Context, artifactID string) (httptransport.ArtifactReviewDTO, error) {
	item, err := h.GetArtifact.Execute(ctx, artifactID)
	if err != nil {
		return httptransport.ArtifactReviewDTO{}, err
	}
	return mapArtifact(item), nil
}

// UpdateReviewHandler falls back to userID when the body names no reviewer.
func (h Handler) UpdateReviewHandler(
	ctx context.Context,
	userID string,
	artifactID string,
	req httptransport.UpdateReviewRequest,
) (httptransport.ArtifactReviewDTO, error) {
	reviewedBy := strings.TrimSpace(req.ReviewedBy)
	if reviewedBy == "" {
		reviewedBy = strings.TrimSpace(userID)
	}
	item, err := h.UpdateReview.Execute(ctx, commands.UpdateReviewCommand{
		ArtifactID:     artifactID,
		Status:         req.Status,
		ReviewedBy:     reviewedBy,
		Notes:          req.Notes,
		ExpectedStatus: req.ExpectedStatus,
	})
	if err != nil {
		return httptransport.ArtifactReviewDTO{}, err
	}
	return mapArtifact(item), nil
}

func (h Handler) GetDocumentReviewsHandler(ctx context.Context, documentID string) (httptransport.DocumentReviewsResponse, error) {
	result, err := h.GetDocumentReviews.Execute(ctx, documentID)
	if err != nil {
		return httptransport.DocumentReviewsResponse{}, err
	}
	items := make([]httptransport.ArtifactReviewDTO, 0, len(result.Artifacts))
	for _, item := range result.Artifacts {
		items = append(items, mapArtifact(item))
	}
	return httptransport.DocumentReviewsResponse{
		DocumentID: result.DocumentID,
		Items:      items,
		Summary:    mapSummary(result.Summary),
	}, nil
}

func (h Handler) ListDocumentSummariesHandler(ctx context.Context) (httptransport.ListDocumentSummariesResponse, error) {
	summaries, err := h.ListDocumentSummaries.Execute(ctx)
	if err != nil {
		return httptransport.ListDocumentSummariesResponse{}, err
	}
	items := make([]httptransport.DocumentReviewSummaryDTO, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, mapSummary(summary))
	}
	return httptransport.ListDocumentSummariesResponse{Items: items}, nil
}

func mapArtifact(item entities.ArtifactReview) httptransport.ArtifactReviewDTO {
	var reviewedAt *string
	if item.ReviewedAt != nil {
		value := item.ReviewedAt.UTC().Format(time.RFC3339Nano)
		reviewedAt = &value
	}
	return httptransport.ArtifactReviewDTO{
		ArtifactID:   item.ArtifactID,
		DocumentID:   item.DocumentID,
		ArtifactType: item.ArtifactType,
		Title:        item.Title,
		ReviewStatus: string(item.ReviewStatus),
		ReviewedBy:   item.ReviewedBy,
		ReviewedAt:   reviewedAt,
		ReviewNotes:  item.ReviewNotes,
		Version:      item.Version,
		CreatedAt:    item.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    item.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func mapSummary(summary entities.DocumentReviewSummary) httptransport.DocumentReviewSummaryDTO {
	return httptransport.DocumentReviewSummaryDTO{
		DocumentID:     summary.DocumentID,
		Pending:        summary.Pending,
		NeedsRevision:  summary.NeedsRevision,
		Completed:      summary.Completed,
		Total:          summary.Total,
		NeedsAttention: summary.NeedsAttention,
	}
}
