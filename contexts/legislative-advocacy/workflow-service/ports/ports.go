package ports

import (
	"context"
	"time"

	"legisflow/contexts/legislative-advocacy/workflow-service/domain/entities"
	contractsv1 "legisflow/contracts/gen/events/v1"
)

// ProcessCatalog serves the static process definition loaded at boot.
type ProcessCatalog interface {
	Definition() entities.ProcessDefinition
	ListStates() []entities.ProcessState
	ListGateTemplates(processID string) ([]entities.GateTemplate, error)
}

// WorkflowRepository persists workflows and their history. Writes that carry
// an event append it to the outbox in the same transaction.
type WorkflowRepository interface {
	CreateWorkflow(ctx context.Context, workflow entities.CampaignWorkflow, gates []entities.Gate, event EventEnvelope) error
	GetWorkflow(ctx context.Context, campaignID string) (entities.CampaignWorkflow, error)
	// SaveTransition writes workflow only if the stored version still equals
	// expectedVersion, otherwise it returns ErrConflict.
	SaveTransition(
		ctx context.Context,
		workflow entities.CampaignWorkflow,
		expectedVersion int64,
		transition entities.Transition,
		event EventEnvelope,
	) error
	ListTransitions(ctx context.Context, campaignID string) ([]entities.Transition, error)
}

type GateRepository interface {
	GetGate(ctx context.Context, gateID string) (entities.Gate, error)
	ListGates(ctx context.Context, campaignID string) ([]entities.Gate, error)
	// SaveGateApproval writes gate if its stored version equals
	// expectedVersion and its campaign still sits on gate.FromState.
	SaveGateApproval(ctx context.Context, gate entities.Gate, expectedVersion int64, event EventEnvelope) error
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
