package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ProcessStateDTO struct {
	StateID     string `json:"state_id"`
	Name        string `json:"name"`
	Index       int    `json:"index"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}

type GateTemplateDTO struct {
	Code        string `json:"code"`
	FromState   string `json:"from_state"`
	ToState     string `json:"to_state"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ListProcessStatesResponse struct {
	Items []ProcessStateDTO `json:"items"`
}

type ListGateTemplatesResponse struct {
	ProcessID string            `json:"process_id"`
	Items     []GateTemplateDTO `json:"items"`
}

type GateDTO struct {
	GateID        string  `json:"gate_id"`
	CampaignID    string  `json:"campaign_id"`
	Code          string  `json:"code"`
	FromState     string  `json:"from_state"`
	ToState       string  `json:"to_state"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Status        string  `json:"status"`
	ApprovedBy    *string `json:"approved_by"`
	ApprovedAt    *string `json:"approved_at"`
	ApprovalNotes *string `json:"approval_notes,omitempty"`
	IsActive      bool    `json:"is_active"`
}

type WorkflowStateResponse struct {
	CampaignID     string          `json:"campaign_id"`
	CurrentState   ProcessStateDTO `json:"current_state"`
	Index          int             `json:"index"`
	Total          int             `json:"total"`
	StateEnteredAt string          `json:"state_entered_at"`
	IsTerminal     bool            `json:"is_terminal"`
	CanAdvance     bool            `json:"can_advance"`
	PendingGateID  *string         `json:"pending_gate_id"`
	PendingGate    *GateDTO        `json:"pending_gate,omitempty"`
	Version        int64           `json:"version"`
}

type StateStatusDTO struct {
	ProcessStateDTO
	Status string `json:"status"`
}

type ListWorkflowStatesResponse struct {
	CampaignID   string           `json:"campaign_id"`
	CurrentIndex int              `json:"current_index"`
	Items        []StateStatusDTO `json:"items"`
}

type ListGatesResponse struct {
	CampaignID string    `json:"campaign_id"`
	Items      []GateDTO `json:"items"`
}

type TransitionDTO struct {
	TransitionID string `json:"transition_id"`
	FromState    string `json:"from_state"`
	ToState      string `json:"to_state"`
	Kind         string `json:"kind"`
	RequestedBy  string `json:"requested_by"`
	GateID       string `json:"gate_id,omitempty"`
	ApprovedBy   string `json:"approved_by,omitempty"`
	Notes        string `json:"notes,omitempty"`
	OccurredAt   string `json:"occurred_at"`
}

type HistoryResponse struct {
	CampaignID string          `json:"campaign_id"`
	Items      []TransitionDTO `json:"items"`
}

type InitializeWorkflowResponse struct {
	State WorkflowStateResponse `json:"state"`
	Gates []GateDTO             `json:"gates"`
}

type AdvanceRequest struct {
	RequestedBy     string `json:"requested_by"`
	ExpectedStateID string `json:"expected_state_id"`
	Notes           string `json:"notes"`
}

type AdvanceResponse struct {
	State      WorkflowStateResponse `json:"state"`
	Transition TransitionDTO         `json:"transition"`
}

type ApproveGateRequest struct {
	ApprovedBy string `json:"approved_by"`
	Notes      string `json:"notes"`
}

type ApproveGateResponse struct {
	Gate     GateDTO `json:"gate"`
	Replayed bool    `json:"replayed"`
}

type ResetRequest struct {
	Reason string `json:"reason"`
}

type ResetResponse struct {
	State      WorkflowStateResponse `json:"state"`
	Transition TransitionDTO         `json:"transition"`
}
