package queries

import (
	"context"
	"log/slog"
	"strings"

	"legisflow/contexts/legislative-advocacy/workflow-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/workflow-service/domain/errors"
	"legisflow/contexts/legislative-advocacy/workflow-service/ports"
)

type GetCurrentStateUseCase struct {
	Workflows ports.WorkflowRepository
	Gates     ports.GateRepository
	Catalog   ports.ProcessCatalog
	Logger    *slog.Logger
}

func (uc GetCurrentStateUseCase) Execute(ctx context.Context, campaignID string) (entities.Progress, error) {
	return loadProgress(ctx, uc.Workflows, uc.Gates, uc.Catalog, campaignID)
}

func loadProgress(
	ctx context.Context,
	workflows ports.WorkflowRepository,
	gates ports.GateRepository,
	catalog ports.ProcessCatalog,
	campaignID string,
) (entities.Progress, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return entities.Progress{}, domainerrors.ErrInvalidInput
	}
	workflow, err := workflows.GetWorkflow(ctx, campaignID)
	if err != nil {
		return entities.Progress{}, err
	}
	items, err := gates.ListGates(ctx, campaignID)
	if err != nil {
		return entities.Progress{}, err
	}
	return entities.EvaluateProgress(catalog.Definition(), workflow, items)
}
