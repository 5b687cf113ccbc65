package commands

import (
	"context"
	"log/slog"
	"strings"

	application "legisflow/contexts/legislative-advocacy/workflow-service/application"
	"legisflow/contexts/legislative-advocacy/workflow-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/workflow-service/domain/errors"
	"legisflow/contexts/legislative-advocacy/workflow-service/ports"
)

type InitializeWorkflowCommand struct {
	CampaignID  string
	RequestedBy string
}

type InitializeWorkflowResult struct {
	Workflow entities.CampaignWorkflow
	Gates    []entities.Gate
}

// InitializeWorkflowUseCase places a new campaign on the first state and
// creates its pending gates.
type InitializeWorkflowUseCase struct {
	Workflows ports.WorkflowRepository
	Catalog   ports.ProcessCatalog
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc InitializeWorkflowUseCase) Execute(ctx context.Context, cmd InitializeWorkflowCommand) (InitializeWorkflowResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	campaignID := strings.TrimSpace(cmd.CampaignID)
	if campaignID == "" {
		return InitializeWorkflowResult{}, domainerrors.ErrInvalidInput
	}

	def := uc.Catalog.Definition()
	now := nowFrom(uc.Clock)
	first := def.First()
	workflow := entities.CampaignWorkflow{
		CampaignID:     campaignID,
		ProcessID:      def.ProcessID,
		CurrentStateID: first.StateID,
		StateEnteredAt: now,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	gates := make([]entities.Gate, 0, len(def.Gates))
	gateIDs := make([]string, 0, len(def.Gates))
	for _, template := range def.Gates {
		gateID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return InitializeWorkflowResult{}, err
		}
		from, _ := def.State(template.FromState)
		gate := entities.NewGate(gateID, campaignID, template, from.Index, now)
		gate.Version = 1
		gates = append(gates, gate)
		gateIDs = append(gateIDs, gateID)
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return InitializeWorkflowResult{}, err
	}
	event, err := newEnvelope(eventID, EventWorkflowInitialized, campaignID, now, map[string]any{
		"campaign_id":  campaignID,
		"process_id":   def.ProcessID,
		"state_id":     first.StateID,
		"gate_ids":     gateIDs,
		"requested_by": strings.TrimSpace(cmd.RequestedBy),
	})
	if err != nil {
		return InitializeWorkflowResult{}, err
	}

	if err := uc.Workflows.CreateWorkflow(ctx, workflow, gates, event); err != nil {
		logger.Warn("workflow initialization rejected",
			"event", "workflow_initialize_rejected",
			"module", "legislative-advocacy/workflow-service",
			"layer", "application",
			"campaign_id", campaignID,
			"error", err.Error(),
		)
		return InitializeWorkflowResult{}, err
	}

	logger.Info("workflow initialized",
		"event", "workflow_initialized",
		"module", "legislative-advocacy/workflow-service",
		"layer", "application",
		"campaign_id", campaignID,
		"state_id", first.StateID,
		"gate_count", len(gates),
	)
	return InitializeWorkflowResult{Workflow: workflow, Gates: gates}, nil
}
