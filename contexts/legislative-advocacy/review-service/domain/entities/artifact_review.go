package entities

import (
	"fmt"
	"strings"
	"time"

	domainerrors "legisflow/contexts/legislative-advocacy/review-service/domain/errors"
)

type ReviewStatus string

const (
	ReviewStatusPendingReview ReviewStatus = "pending_review"
	ReviewStatusReviewed      ReviewStatus = "reviewed"
	ReviewStatusNeedsRevision ReviewStatus = "needs_revision"
)

func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewStatusPendingReview, ReviewStatusReviewed, ReviewStatusNeedsRevision:
		return true
	}
	return false
}

func ParseReviewStatus(raw string) (ReviewStatus, error) {
	status := ReviewStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", domainerrors.ErrInvalidReviewStatus, raw)
	}
	return status, nil
}

// ArtifactReview is the review metadata of one generated artifact.
type ArtifactReview struct {
	ArtifactID   string
	DocumentID   string
	ArtifactType string
	Title        string
	ReviewStatus ReviewStatus
	ReviewedBy   *string
	ReviewedAt   *time.Time
	ReviewNotes  *string
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewArtifactReview(artifactID, documentID, artifactType, title string, now time.Time) (ArtifactReview, error) {
	artifactID = strings.TrimSpace(artifactID)
	documentID = strings.TrimSpace(documentID)
	artifactType = strings.TrimSpace(artifactType)
	if artifactID == "" || documentID == "" || artifactType == "" {
		return ArtifactReview{}, fmt.Errorf("%w: artifact_id, document_id and artifact_type are required",
			domainerrors.ErrInvalidArtifactInput)
	}
	at := now.UTC()
	return ArtifactReview{
		ArtifactID:   artifactID,
		DocumentID:   documentID,
		ArtifactType: artifactType,
		Title:        strings.TrimSpace(title),
		ReviewStatus: ReviewStatusPendingReview,
		Version:      1,
		CreatedAt:    at,
		UpdatedAt:    at,
	}, nil
}

// ValidateReviewInput checks the fields a target status requires. It runs
// before anything is loaded or written.
func ValidateReviewInput(status ReviewStatus, reviewedBy string, notes string) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", domainerrors.ErrInvalidReviewStatus, status)
	}
	switch status {
	case ReviewStatusReviewed:
		if strings.TrimSpace(reviewedBy) == "" {
			return domainerrors.ErrReviewerRequired
		}
	case ReviewStatusNeedsRevision:
		if strings.TrimSpace(reviewedBy) == "" {
			return domainerrors.ErrReviewerRequired
		}
		if strings.TrimSpace(notes) == "" {
			return domainerrors.ErrRevisionNotesRequired
		}
	}
	return nil
}

// ApplyReview returns the artifact moved to status. Moving back to
// pending_review clears reviewed_at and keeps the last reviewer and notes.
func (a ArtifactReview) ApplyReview(status ReviewStatus, reviewedBy string, notes string, now time.Time) (ArtifactReview, error) {
	if err := ValidateReviewInput(status, reviewedBy, notes); err != nil {
		return ArtifactReview{}, err
	}
	at := now.UTC()
	out := a
	out.ReviewStatus = status
	out.UpdatedAt = at
	out.Version = a.Version + 1

	switch status {
	case ReviewStatusPendingReview:
		out.ReviewedAt = nil
	case ReviewStatusReviewed, ReviewStatusNeedsRevision:
		by := strings.TrimSpace(reviewedBy)
		out.ReviewedBy = &by
		out.ReviewedAt = &at
		out.ReviewNotes = nil
		if trimmed := strings.TrimSpace(notes); trimmed != "" {
			out.ReviewNotes = &trimmed
		}
	}
	return out, nil
}

// DocumentReviewSummary aggregates the review state of one document's
// artifacts. Pending includes artifacts sent back for revision.
type DocumentReviewSummary struct {
	DocumentID     string
	Pending        int
	NeedsRevision  int
	Completed      int
	Total          int
	NeedsAttention bool
}

func Summarize(documentID string, items []ArtifactReview) DocumentReviewSummary {
	summary := DocumentReviewSummary{DocumentID: documentID, Total: len(items)}
	for _, item := range items {
		switch item.ReviewStatus {
		case ReviewStatusReviewed:
			summary.Completed++
		case ReviewStatusNeedsRevision:
			summary.NeedsRevision++
			summary.Pending++
		default:
			summary.Pending++
		}
	}
	summary.NeedsAttention = summary.Pending > 0
	return summary
}
