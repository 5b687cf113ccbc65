package entities

import "time"

// CampaignWorkflow is the per-campaign position in the process. Version is
// bumped on every write and used as the compare-and-swap token.
type CampaignWorkflow struct {
	CampaignID     string
	ProcessID      string
	CurrentStateID string
	StateEnteredAt time.Time
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type TransitionKind string

const (
	TransitionKindAdvance TransitionKind = "advance"
	TransitionKindReset   TransitionKind = "reset"
)

// Transition is one entry of a workflow's history.
type Transition struct {
	TransitionID string
	CampaignID   string
	FromState    string
	ToState      string
	Kind         TransitionKind
	RequestedBy  string
	GateID       string
	ApprovedBy   string
	Notes        string
	OccurredAt   time.Time
}
