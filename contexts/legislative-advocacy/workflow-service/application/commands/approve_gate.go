package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	application "legisflow/contexts/legislative-advocacy/workflow-service/application"
	"legisflow/contexts/legislative-advocacy/workflow-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/workflow-service/domain/errors"
	"legisflow/contexts/legislative-advocacy/workflow-service/ports"
)

type ApproveGateCommand struct {
	GateID     string
	ApprovedBy string
	Notes      string
}

// ApproveGateResult.Replayed is true when the gate was already approved and
// nothing was written.
type ApproveGateResult struct {
	Gate     entities.Gate
	Replayed bool
}

type ApproveGateUseCase struct {
	Workflows ports.WorkflowRepository
	Gates     ports.GateRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc ApproveGateUseCase) Execute(ctx context.Context, cmd ApproveGateCommand) (ApproveGateResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	gateID := strings.TrimSpace(cmd.GateID)
	approvedBy := strings.TrimSpace(cmd.ApprovedBy)
	if gateID == "" {
		return ApproveGateResult{}, domainerrors.ErrInvalidInput
	}
	if approvedBy == "" {
		return ApproveGateResult{}, fmt.Errorf("%w: approved_by", domainerrors.ErrActorRequired)
	}

	gate, err := uc.Gates.GetGate(ctx, gateID)
	if err != nil {
		return ApproveGateResult{}, err
	}
	if gate.IsApproved() {
		logger.Debug("gate already approved",
			"event", "workflow_gate_approve_replayed",
			"module", "legislative-advocacy/workflow-service",
			"layer", "application",
			"gate_id", gate.GateID,
			"campaign_id", gate.CampaignID,
		)
		return ApproveGateResult{Gate: gate, Replayed: true}, nil
	}

	workflow, err := uc.Workflows.GetWorkflow(ctx, gate.CampaignID)
	if err != nil {
		return ApproveGateResult{}, err
	}
	if !gate.IsActive(workflow.CurrentStateID) {
		logger.Warn("inactive gate approval rejected",
			"event", "workflow_gate_approve_rejected",
			"module", "legislative-advocacy/workflow-service",
			"layer", "application",
			"gate_id", gate.GateID,
			"campaign_id", gate.CampaignID,
			"gate_from_state", gate.FromState,
			"current_state", workflow.CurrentStateID,
		)
		return ApproveGateResult{}, fmt.Errorf("%w: %s guards %s but campaign is at %s",
			domainerrors.ErrGateNotActive, gate.Code, gate.FromState, workflow.CurrentStateID)
	}

	now := nowFrom(uc.Clock)
	approved, _ := gate.Approve(approvedBy, cmd.Notes, now)
	approved.Version = gate.Version + 1

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return ApproveGateResult{}, err
	}
	event, err := newEnvelope(eventID, EventGateApproved, gate.CampaignID, now, map[string]any{
		"campaign_id": gate.CampaignID,
		"gate_id":     gate.GateID,
		"gate_code":   gate.Code,
		"from_state":  gate.FromState,
		"to_state":    gate.ToState,
		"approved_by": approvedBy,
		"approved_at": now,
	})
	if err != nil {
		return ApproveGateResult{}, err
	}

	if err := uc.Gates.SaveGateApproval(ctx, approved, gate.Version, event); err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			// A concurrent approval of the same gate is still a success.
			current, getErr := uc.Gates.GetGate(ctx, gateID)
			if getErr == nil && current.IsApproved() {
				return ApproveGateResult{Gate: current, Replayed: true}, nil
			}
		}
		return ApproveGateResult{}, err
	}

	logger.Info("gate approved",
		"event", "workflow_gate_approved",
		"module", "legislative-advocacy/workflow-service",
		"layer", "application",
		"gate_id", approved.GateID,
		"gate_code", approved.Code,
		"campaign_id", approved.CampaignID,
		"approved_by", approvedBy,
	)
	return ApproveGateResult{Gate: approved}, nil
}
