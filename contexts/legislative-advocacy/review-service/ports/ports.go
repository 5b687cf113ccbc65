package ports

import (
	"context"
	"time"

	"legisflow/contexts/legislative-advocacy/review-service/domain/entities"
	contractsv1 "legisflow/contracts/gen/events/v1"
)

type ArtifactFilter struct {
	DocumentID string
}

// ArtifactReviewRepository stores artifact reviews. Writes that carry an
// event append it to the outbox in the same transaction.
type ArtifactReviewRepository interface {
	// CreateArtifact returns ErrArtifactExists when the artifact id is taken.
	CreateArtifact(ctx context.Context, item entities.ArtifactReview, event EventEnvelope) error
	GetArtifact(ctx context.Context, artifactID string) (entities.ArtifactReview, error)
	// SaveReview writes item only if the stored version equals expectedVersion.
	SaveReview(ctx context.Context, item entities.ArtifactReview, expectedVersion int64, event EventEnvelope) error
	ListArtifacts(ctx context.Context, filter ArtifactFilter) ([]entities.ArtifactReview, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

// EventDedupStore records consumed event IDs. ReserveEvent reports true when
// an unexpired reservation for the same payload already exists; a consumer
// whose handling fails releases its reservation so redelivery runs again.
type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
	ReleaseEvent(ctx context.Context, eventID string) error
}
