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

type ResetWorkflowCommand struct {
	CampaignID  string
	RequestedBy string
	Reason      string
}

type ResetWorkflowResult struct {
	Workflow   entities.CampaignWorkflow
	Transition entities.Transition
}

// ResetWorkflowUseCase returns a campaign to the first state. Gate approvals
// are left untouched, so previously approved edges can be re-traversed.
type ResetWorkflowUseCase struct {
	Workflows ports.WorkflowRepository
	Catalog   ports.ProcessCatalog
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc ResetWorkflowUseCase) Execute(ctx context.Context, cmd ResetWorkflowCommand) (ResetWorkflowResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	campaignID := strings.TrimSpace(cmd.CampaignID)
	requestedBy := strings.TrimSpace(cmd.RequestedBy)
	if campaignID == "" {
		return ResetWorkflowResult{}, domainerrors.ErrInvalidInput
	}
	if requestedBy == "" {
		return ResetWorkflowResult{}, fmt.Errorf("%w: requested_by", domainerrors.ErrActorRequired)
	}

	workflow, err := uc.Workflows.GetWorkflow(ctx, campaignID)
	if err != nil {
		return ResetWorkflowResult{}, err
	}

	now := nowFrom(uc.Clock)
	first := uc.Catalog.Definition().First()
	updated := workflow
	updated.CurrentStateID = first.StateID
	updated.StateEnteredAt = now
	updated.UpdatedAt = now
	updated.Version = workflow.Version + 1

	transitionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return ResetWorkflowResult{}, err
	}
	transition := entities.Transition{
		TransitionID: transitionID,
		CampaignID:   campaignID,
		FromState:    workflow.CurrentStateID,
		ToState:      first.StateID,
		Kind:         entities.TransitionKindReset,
		RequestedBy:  requestedBy,
		Notes:        strings.TrimSpace(cmd.Reason),
		OccurredAt:   now,
	}
	event, err := newEnvelope(transitionID, EventWorkflowReset, campaignID, now, map[string]any{
		"campaign_id":   campaignID,
		"from_state":    transition.FromState,
		"to_state":      transition.ToState,
		"requested_by":  requestedBy,
		"reason":        transition.Notes,
		"transition_id": transitionID,
	})
	if err != nil {
		return ResetWorkflowResult{}, err
	}

	if err := uc.Workflows.SaveTransition(ctx, updated, workflow.Version, transition, event); err != nil {
		return ResetWorkflowResult{}, err
	}

	logger.Warn("workflow reset",
		"event", "workflow_reset",
		"module", "legislative-advocacy/workflow-service",
		"layer", "application",
		"campaign_id", campaignID,
		"from_state", transition.FromState,
		"requested_by", requestedBy,
	)
	return ResetWorkflowResult{Workflow: updated, Transition: transition}, nil
}
