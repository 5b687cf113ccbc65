package queries

import (
	"context"
	"log/slog"

	"legisflow/contexts/legislative-advocacy/workflow-service/domain/entities"
	"legisflow/contexts/legislative-advocacy/workflow-service/ports"
)

type WorkflowStates struct {
	Progress entities.Progress
	States   []entities.StateView
}

// ListWorkflowStatesUseCase labels each process state completed, current or
// upcoming for one campaign.
type ListWorkflowStatesUseCase struct {
	Workflows ports.WorkflowRepository
	Gates     ports.GateRepository
	Catalog   ports.ProcessCatalog
	Logger    *slog.Logger
}

func (uc ListWorkflowStatesUseCase) Execute(ctx context.Context, campaignID string) (WorkflowStates, error) {
	progress, err := loadProgress(ctx, uc.Workflows, uc.Gates, uc.Catalog, campaignID)
	if err != nil {
		return WorkflowStates{}, err
	}
	return WorkflowStates{
		Progress: progress,
		States:   entities.StateViews(uc.Catalog.Definition(), progress.Index),
	}, nil
}

type ListProcessStatesUseCase struct {
	Catalog ports.ProcessCatalog
}

func (uc ListProcessStatesUseCase) Execute(context.Context) []entities.ProcessState {
	return uc.Catalog.ListStates()
}

type ListGateTemplatesUseCase struct {
	Catalog ports.ProcessCatalog
}

func (uc ListGateTemplatesUseCase) Execute(_ context.Context, processID string) ([]entities.GateTemplate, error) {
	return uc.Catalog.ListGateTemplates(processID)
}
