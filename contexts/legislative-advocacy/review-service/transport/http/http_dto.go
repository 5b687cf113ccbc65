package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterArtifactRequest struct {
	ArtifactID   string `json:"artifact_id"`
	DocumentID   string `json:"document_id"`
	ArtifactType string `json:"artifact_type"`
	Title        string `json:"title"`
}

type RegisterArtifactResponse struct {
	Artifact ArtifactReviewDTO `json:"artifact"`
	Replayed bool              `json:"replayed"`
}

type ArtifactReviewDTO struct {
	ArtifactID   string  `json:"artifact_id"`
	DocumentID   string  `json:"document_id"`
	ArtifactType string  `json:"artifact_type"`
	Title        string  `json:"title"`
	ReviewStatus string  `json:"review_status"`
	ReviewedBy   *string `json:"reviewed_by"`
	ReviewedAt   *string `json:"reviewed_at"`
	ReviewNotes  *string `json:"review_notes"`
	Version      int64   `json:"version"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type UpdateReviewRequest struct {
	Status         string `json:"status"`
	ReviewedBy     string `json:"reviewed_by"`
	Notes          string `json:"notes"`
	ExpectedStatus string `json:"expected_status,omitempty"`
}

type DocumentReviewSummaryDTO struct {
	DocumentID     string `json:"document_id"`
	Pending        int    `json:"pending"`
	NeedsRevision  int    `json:"needs_revision"`
	Completed      int    `json:"completed"`
	Total          int    `json:"total"`
	NeedsAttention bool   `json:"needs_attention"`
}

type DocumentReviewsResponse struct {
	DocumentID string                   `json:"document_id"`
	Items      []ArtifactReviewDTO      `json:"items"`
	Summary    DocumentReviewSummaryDTO `json:"summary"`
}

type ListDocumentSummariesResponse struct {
	Items []DocumentReviewSummaryDTO `json:"items"`
}
