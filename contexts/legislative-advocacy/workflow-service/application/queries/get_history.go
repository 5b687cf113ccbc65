package queries

import (
	"context"
	"log/slog"
	"strings"

	"legisflow/contexts/legislative-advocacy/workflow-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/workflow-service/domain/errors"
	"legisflow/contexts/legislative-advocacy/workflow-service/ports"
)

type GetHistoryUseCase struct {
	Workflows ports.WorkflowRepository
	Logger    *slog.Logger
}

// Execute returns the campaign's transitions, oldest first.
func (uc GetHistoryUseCase) Execute(ctx context.Context, campaignID string) ([]entities.Transition, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	if _, err := uc.Workflows.GetWorkflow(ctx, campaignID); err != nil {
		return nil, err
	}
	return uc.Workflows.ListTransitions(ctx, campaignID)
}
