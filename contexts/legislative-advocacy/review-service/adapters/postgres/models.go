package postgresadapter

import (
	"time"

	"legisflow/contexts/legislative-advocacy/review-service/domain/entities"
)

type artifactReviewModel struct {
	ArtifactID   string     `gorm:"column:artifact_id;primaryKey"`
	DocumentID   string     `gorm:"column:document_id"`
	ArtifactType string     `gorm:"column:artifact_type"`
	Title        string     `gorm:"column:title"`
	ReviewStatus string     `gorm:"column:review_status"`
	ReviewedBy   *string    `gorm:"column:reviewed_by"`
	ReviewedAt   *time.Time `gorm:"column:reviewed_at"`
	ReviewNotes  *string    `gorm:"column:review_notes"`
	Version      int64      `gorm:"column:version"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (artifactReviewModel) TableName() string {
	return "artifact_reviews"
}

func artifactReviewModelFromEntity(item entities.ArtifactReview) artifactReviewModel {
	return artifactReviewModel{
		ArtifactID:   item.ArtifactID,
		DocumentID:   item.DocumentID,
		ArtifactType: item.ArtifactType,
		Title:        item.Title,
		ReviewStatus: string(item.ReviewStatus),
		ReviewedBy:   item.ReviewedBy,
		ReviewedAt:   normalizeOptionalTime(item.ReviewedAt),
		ReviewNotes:  item.ReviewNotes,
		Version:      item.Version,
		CreatedAt:    item.CreatedAt.UTC(),
		UpdatedAt:    item.UpdatedAt.UTC(),
	}
}

func (m artifactReviewModel) toEntity() entities.ArtifactReview {
	return entities.ArtifactReview{
		ArtifactID:   m.ArtifactID,
		DocumentID:   m.DocumentID,
		ArtifactType: m.ArtifactType,
		Title:        m.Title,
		ReviewStatus: entities.ReviewStatus(m.ReviewStatus),
		ReviewedBy:   m.ReviewedBy,
		ReviewedAt:   normalizeOptionalTime(m.ReviewedAt),
		ReviewNotes:  m.ReviewNotes,
		Version:      m.Version,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "artifact_review_outbox"
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	Consumer    string    `gorm:"column:consumer;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "consumer_dedup"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}
