package postgresadapter

import (
	"time"

	"legisflow/contexts/legislative-advocacy/workflow-service/domain/entities"
)

type workflowModel struct {
	CampaignID     string    `gorm:"column:campaign_id;primaryKey"`
	ProcessID      string    `gorm:"column:process_id"`
	CurrentStateID string    `gorm:"column:current_state_id"`
	StateEnteredAt time.Time `gorm:"column:state_entered_at"`
	Version        int64     `gorm:"column:version"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (workflowModel) TableName() string {
	return "legislative_workflows"
}

func workflowModelFromEntity(item entities.CampaignWorkflow) workflowModel {
	return workflowModel{
		CampaignID:     item.CampaignID,
		ProcessID:      item.ProcessID,
		CurrentStateID: item.CurrentStateID,
		StateEnteredAt: item.StateEnteredAt.UTC(),
		Version:        item.Version,
		CreatedAt:      item.CreatedAt.UTC(),
		UpdatedAt:      item.UpdatedAt.UTC(),
	}
}

func (m workflowModel) toEntity() entities.CampaignWorkflow {
	return entities.CampaignWorkflow{
		CampaignID:     m.CampaignID,
		ProcessID:      m.ProcessID,
		CurrentStateID: m.CurrentStateID,
		StateEnteredAt: m.StateEnteredAt.UTC(),
		Version:        m.Version,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type gateModel struct {
	GateID        string     `gorm:"column:gate_id;primaryKey"`
	CampaignID    string     `gorm:"column:campaign_id"`
	Code          string     `gorm:"column:code"`
	FromState     string     `gorm:"column:from_state"`
	ToState       string     `gorm:"column:to_state"`
	Name          string     `gorm:"column:name"`
	Description   string     `gorm:"column:description"`
	Position      int        `gorm:"column:position"`
	Status        string     `gorm:"column:status"`
	ApprovedBy    *string    `gorm:"column:approved_by"`
	ApprovedAt    *time.Time `gorm:"column:approved_at"`
	ApprovalNotes *string    `gorm:"column:approval_notes"`
	Version       int64      `gorm:"column:version"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (gateModel) TableName() string {
	return "legislative_gates"
}

func gateModelFromEntity(item entities.Gate) gateModel {
	return gateModel{
		GateID:        item.GateID,
		CampaignID:    item.CampaignID,
		Code:          item.Code,
		FromState:     item.FromState,
		ToState:       item.ToState,
		Name:          item.Name,
		Description:   item.Description,
		Position:      item.Position,
		Status:        string(item.Status),
		ApprovedBy:    item.ApprovedBy,
		ApprovedAt:    normalizeOptionalTime(item.ApprovedAt),
		ApprovalNotes: item.ApprovalNotes,
		Version:       item.Version,
		CreatedAt:     item.CreatedAt.UTC(),
		UpdatedAt:     item.UpdatedAt.UTC(),
	}
}

func (m gateModel) toEntity() entities.Gate {
	return entities.Gate{
		GateID:        m.GateID,
		CampaignID:    m.CampaignID,
		Code:          m.Code,
		FromState:     m.FromState,
		ToState:       m.ToState,
		Name:          m.Name,
		Description:   m.Description,
		Position:      m.Position,
		Status:        entities.GateStatus(m.Status),
		ApprovedBy:    m.ApprovedBy,
		ApprovedAt:    normalizeOptionalTime(m.ApprovedAt),
		ApprovalNotes: m.ApprovalNotes,
		Version:       m.Version,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type transitionModel struct {
	TransitionID string    `gorm:"column:transition_id;primaryKey"`
	CampaignID   string    `gorm:"column:campaign_id"`
	FromState    string    `gorm:"column:from_state"`
	ToState      string    `gorm:"column:to_state"`
	Kind         string    `gorm:"column:kind"`
	RequestedBy  string    `gorm:"column:requested_by"`
	GateID       string    `gorm:"column:gate_id"`
	ApprovedBy   string    `gorm:"column:approved_by"`
	Notes        string    `gorm:"column:notes"`
	OccurredAt   time.Time `gorm:"column:occurred_at"`
}

func (transitionModel) TableName() string {
	return "legislative_transitions"
}

func (m transitionModel) toEntity() entities.Transition {
	return entities.Transition{
		TransitionID: m.TransitionID,
		CampaignID:   m.CampaignID,
		FromState:    m.FromState,
		ToState:      m.ToState,
		Kind:         entities.TransitionKind(m.Kind),
		RequestedBy:  m.RequestedBy,
		GateID:       m.GateID,
		ApprovedBy:   m.ApprovedBy,
		Notes:        m.Notes,
		OccurredAt:   m.OccurredAt.UTC(),
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
	return "legislative_outbox"
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
