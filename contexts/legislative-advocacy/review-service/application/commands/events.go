package commands

import (
	"encoding/json"
	"time"

	"legisflow/contexts/legislative-advocacy/review-service/ports"
)

const sourceService = "review-service"

const (
	EventArtifactRegistered    = "legislative.artifact.registered"
	EventArtifactReviewUpdated = "legislative.artifact.review_updated"
)

func newEnvelope(eventID string, eventType string, documentID string, occurredAt time.Time, data map[string]any) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    sourceService,
		SchemaVersion:    1,
		PartitionKeyPath: "document_id",
		PartitionKey:     documentID,
		Data:             payload,
	}, nil
}

func nowFrom(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}
