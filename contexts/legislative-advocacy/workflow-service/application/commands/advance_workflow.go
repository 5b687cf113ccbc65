package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "legisflow/contexts/legislative-advocacy/workflow-service/application"
	"legisflow/contexts/legislative-advocacy/workflow-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/workflow-service/domain/errors"
	"legisflow/contexts/legislative-advocacy/workflow-service/ports"
)

// AdvanceWorkflowCommand moves a campaign one state forward.
// When ExpectedStateID is set the command only applies from that state.
type AdvanceWorkflowCommand struct {
	CampaignID      string
	RequestedBy     string
	ExpectedStateID string
	Notes           string
}

type AdvanceWorkflowResult struct {
	Workflow   entities.CampaignWorkflow
	Transition entities.Transition
	Progress   entities.Progress
}

type AdvanceWorkflowUseCase struct {
	Workflows ports.WorkflowRepository
	Gates     ports.GateRepository
	Catalog   ports.ProcessCatalog
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc AdvanceWorkflowUseCase) Execute(ctx context.Context, cmd AdvanceWorkflowCommand) (AdvanceWorkflowResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	campaignID := strings.TrimSpace(cmd.CampaignID)
	requestedBy := strings.TrimSpace(cmd.RequestedBy)
	if campaignID == "" {
		return AdvanceWorkflowResult{}, domainerrors.ErrInvalidInput
	}
	if requestedBy == "" {
		return AdvanceWorkflowResult{}, fmt.Errorf("%w: requested_by", domainerrors.ErrActorRequired)
	}

	workflow, err := uc.Workflows.GetWorkflow(ctx, campaignID)
	if err != nil {
		return AdvanceWorkflowResult{}, err
	}
	expected := strings.TrimSpace(cmd.ExpectedStateID)
	if expected != "" && expected != workflow.CurrentStateID {
		return AdvanceWorkflowResult{}, fmt.Errorf("%w: expected %s, found %s",
			domainerrors.ErrStateMismatch, expected, workflow.CurrentStateID)
	}

	gates, err := uc.Gates.ListGates(ctx, campaignID)
	if err != nil {
		return AdvanceWorkflowResult{}, err
	}
	def := uc.Catalog.Definition()
	next, gate, err := entities.PlanAdvance(def, workflow, gates)
	if err != nil {
		logger.Warn("workflow advance rejected",
			"event", "workflow_advance_rejected",
			"module", "legislative-advocacy/workflow-service",
			"layer", "application",
			"campaign_id", campaignID,
			"current_state", workflow.CurrentStateID,
			"error", err.Error(),
		)
		return AdvanceWorkflowResult{}, err
	}

	now := nowFrom(uc.Clock)
	updated := workflow
	updated.CurrentStateID = next.StateID
	updated.StateEnteredAt = now
	updated.UpdatedAt = now
	updated.Version = workflow.Version + 1

	transitionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return AdvanceWorkflowResult{}, err
	}
	transition := entities.Transition{
		TransitionID: transitionID,
		CampaignID:   campaignID,
		FromState:    workflow.CurrentStateID,
		ToState:      next.StateID,
		Kind:         entities.TransitionKindAdvance,
		RequestedBy:  requestedBy,
		Notes:        strings.TrimSpace(cmd.Notes),
		OccurredAt:   now,
	}
	if gate != nil {
		transition.GateID = gate.GateID
		if gate.ApprovedBy != nil {
			transition.ApprovedBy = *gate.ApprovedBy
		}
	}

	event, err := newEnvelope(transitionID, EventWorkflowAdvanced, campaignID, now, map[string]any{
		"campaign_id":   campaignID,
		"from_state":    transition.FromState,
		"to_state":      transition.ToState,
		"requested_by":  requestedBy,
		"gate_id":       transition.GateID,
		"approved_by":   transition.ApprovedBy,
		"transition_id": transitionID,
	})
	if err != nil {
		return AdvanceWorkflowResult{}, err
	}

	if err := uc.Workflows.SaveTransition(ctx, updated, workflow.Version, transition, event); err != nil {
		logger.Warn("workflow advance not persisted",
			"event", "workflow_advance_failed",
			"module", "legislative-advocacy/workflow-service",
			"layer", "application",
			"campaign_id", campaignID,
			"from_state", transition.FromState,
			"error", err.Error(),
		)
		return AdvanceWorkflowResult{}, err
	}

	progress, err := entities.EvaluateProgress(def, updated, gates)
	if err != nil {
		return AdvanceWorkflowResult{}, err
	}

	logger.Info("workflow advanced",
		"event", "workflow_advanced",
		"module", "legislative-advocacy/workflow-service",
		"layer", "application",
		"campaign_id", campaignID,
		"from_state", transition.FromState,
		"to_state", transition.ToState,
		"requested_by", requestedBy,
	)
	return AdvanceWorkflowResult{Workflow: updated, Transition: transition, Progress: progress}, nil
}
