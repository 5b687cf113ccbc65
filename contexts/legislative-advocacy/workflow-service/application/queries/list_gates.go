package queries

import (
	"context"
	"log/slog"
	"strings"

	"legisflow/contexts/legislative-advocacy/workflow-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/workflow-service/domain/errors"
	"legisflow/contexts/legislative-advocacy/workflow-service/ports"
)

type GateView struct {
	Gate     entities.Gate
	IsActive bool
}

type ListGatesUseCase struct {
	Workflows ports.WorkflowRepository
	Gates     ports.GateRepository
	Logger    *slog.Logger
}

func (uc ListGatesUseCase) Execute(ctx context.Context, campaignID string) ([]GateView, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	workflow, err := uc.Workflows.GetWorkflow(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	gates, err := uc.Gates.ListGates(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	items := make([]GateView, 0, len(gates))
	for _, gate := range gates {
		items = append(items, GateView{
			Gate:     gate,
			IsActive: gate.IsActive(workflow.CurrentStateID),
		})
	}
	return items, nil
}
