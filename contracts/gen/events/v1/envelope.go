package v1

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Envelope is the versioned event envelope published by the legislative
// advocacy services. Fields are append-only; consumers ignore unknown keys.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id,omitempty"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// Validate reports the first missing routing field.
func (e Envelope) Validate() error {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return errors.New("envelope: event_id is required")
	case strings.TrimSpace(e.EventType) == "":
		return errors.New("envelope: event_type is required")
	case strings.TrimSpace(e.PartitionKey) == "":
		return errors.New("envelope: partition_key is required")
	case len(e.Data) == 0:
		return errors.New("envelope: data is required")
	}
	return nil
}
