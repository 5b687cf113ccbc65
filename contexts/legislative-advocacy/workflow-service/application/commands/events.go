package commands

import (
	"encoding/json"
	"time"

	"legisflow/contexts/legislative-advocacy/workflow-service/ports"
)

const sourceService = "workflow-service"

const (
	EventWorkflowInitialized = "legislative.workflow.initialized"
	EventGateApproved        = "legislative.gate.approved"
	EventWorkflowAdvanced    = "legislative.workflow.advanced"
	EventWorkflowReset       = "legislative.workflow.reset"
)

func newEnvelope(
	eventID string,
	eventType string,
	campaignID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
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
		PartitionKeyPath: "campaign_id",
		PartitionKey:     campaignID,
		Data:             payload,
	}, nil
}

func nowFrom(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}
