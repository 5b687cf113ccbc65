package entities

import (
	"strings"
	"time"
)

type GateStatus string

const (
	GateStatusPending  GateStatus = "pending"
	GateStatusApproved GateStatus = "approved"
)

// Gate is a campaign's instance of a GateTemplate. Whether it is active is
// derived from the workflow's current state and never stored.
type Gate struct {
	GateID        string
	CampaignID    string
	Code          string
	FromState     string
	ToState       string
	Name          string
	Description   string
	Position      int
	Status        GateStatus
	ApprovedBy    *string
	ApprovedAt    *time.Time
	ApprovalNotes *string
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewGate creates a pending gate. position orders gates along the process
// and is the index of the template's from state.
func NewGate(gateID string, campaignID string, template GateTemplate, position int, now time.Time) Gate {
	return Gate{
		GateID:      gateID,
		CampaignID:  campaignID,
		Code:        template.Code,
		FromState:   template.FromState,
		ToState:     template.ToState,
		Name:        template.Name,
		Description: template.Description,
		Position:    position,
		Status:      GateStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (g Gate) IsApproved() bool {
	return g.Status == GateStatusApproved
}

func (g Gate) IsActive(currentStateID string) bool {
	return g.FromState == currentStateID
}

// Approve records the approval. A gate that is already approved is returned
// unchanged with changed=false.
func (g Gate) Approve(approvedBy string, notes string, now time.Time) (Gate, bool) {
	if g.IsApproved() {
		return g, false
	}
	by := strings.TrimSpace(approvedBy)
	at := now.UTC()
	g.Status = GateStatusApproved
	g.ApprovedBy = &by
	g.ApprovedAt = &at
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		g.ApprovalNotes = &trimmed
	}
	g.UpdatedAt = at
	return g, true
}
