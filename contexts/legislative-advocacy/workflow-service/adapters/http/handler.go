package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"legisflow/contexts/legislative-advocacy/workflow-service/application/commands"
	"legisflow/contexts/legislative-advocacy/workflow-service/application/queries"
	"legisflow/contexts/legislative-advocacy/workflow-service/domain/entities"
	httptransport "legisflow/contexts/legislative-advocacy/workflow-service/transport/http"
)

type Handler struct {
	InitializeWorkflow commands.InitializeWorkflowUseCase
	ApproveGate        commands.ApproveGateUseCase
	AdvanceWorkflow    commands.AdvanceWorkflowUseCase
	ResetWorkflow      commands.ResetWorkflowUseCase
	GetCurrentState    queries.GetCurrentStateUseCase
	ListWorkflowStates queries.ListWorkflowStatesUseCase
	ListGates          queries.ListGatesUseCase
	GetHistory         queries.GetHistoryUseCase
	ListProcessStates  queries.ListProcessStatesUseCase
	ListGateTemplates  queries.ListGateTemplatesUseCase
	Logger             *slog.Logger
}

func (h Handler) ListProcessStatesHandler(ctx context.Context) httptransport.ListProcessStatesResponse {
	states := h.ListProcessStates.Execute(ctx)
	items := make([]httptransport.ProcessStateDTO, 0, len(states))
	for _, state := range states {
		items = append(items, mapState(state))
	}
	return httptransport.ListProcessStatesResponse{Items: items}
}

func (h Handler) ListGateTemplatesHandler(ctx context.Context, processID string) (httptransport.ListGateTemplatesResponse, error) {
	templates, err := h.ListGateTemplates.Execute(ctx, processID)
	if err != nil {
		return httptransport.ListGateTemplatesResponse{}, err
	}
	items := make([]httptransport.GateTemplateDTO, 0, len(templates))
	for _, template := range templates {
		items = append(items, httptransport.GateTemplateDTO{
			Code:        template.Code,
			FromState:   template.FromState,
			ToState:     template.ToState,
			Name:        template.Name,
			Description: template.Description,
		})
	}
	return httptransport.ListGateTemplatesResponse{ProcessID: processID, Items: items}, nil
}

func (h Handler) InitializeWorkflowHandler(
	ctx context.Context,
	userID string,
	campaignID string,
) (httptransport.InitializeWorkflowResponse, error) {
	result, err := h.InitializeWorkflow.Execute(ctx, commands.InitializeWorkflowCommand{
		CampaignID:  campaignID,
		RequestedBy: userID,
	})
	if err != nil {
		return httptransport.InitializeWorkflowResponse{}, err
	}
	progress, err := h.GetCurrentState.Execute(ctx, result.Workflow.CampaignID)
	if err != nil {
		return httptransport.InitializeWorkflowResponse{}, err
	}
	gates := make([]httptransport.GateDTO, 0, len(result.Gates))
	for _, gate := range result.Gates {
		gates = append(gates, mapGate(gate, gate.IsActive(result.Workflow.CurrentStateID)))
	}
	return httptransport.InitializeWorkflowResponse{State: mapProgress(progress), Gates: gates}, nil
}

func (h Handler) GetCurrentStateHandler(ctx context.Context, campaignID string) (httptransport.WorkflowStateResponse, error) {
	progress, err := h.GetCurrentState.Execute(ctx, campaignID)
	if err != nil {
		return httptransport.WorkflowStateResponse{}, err
	}
	return mapProgress(progress), nil
}

func (h Handler) ListWorkflowStatesHandler(ctx context.Context, campaignID string) (httptransport.ListWorkflowStatesResponse, error) {
	result, err := h.ListWorkflowStates.Execute(ctx, campaignID)
	if err != nil {
		return httptransport.ListWorkflowStatesResponse{}, err
	}
	items := make([]httptransport.StateStatusDTO, 0, len(result.States))
	for _, view := range result.States {
		items = append(items, httptransport.StateStatusDTO{
			ProcessStateDTO: mapState(view.ProcessState),
			Status:          string(view.Status),
		})
	}
	return httptransport.ListWorkflowStatesResponse{
		CampaignID:   result.Progress.Workflow.CampaignID,
		CurrentIndex: result.Progress.Index,
		Items:        items,
	}, nil
}

func (h Handler) ListGatesHandler(ctx context.Context, campaignID string) (httptransport.ListGatesResponse, error) {
	views, err := h.ListGates.Execute(ctx, campaignID)
	if err != nil {
		return httptransport.ListGatesResponse{}, err
	}
	items := make([]httptransport.GateDTO, 0, len(views))
	for _, view := range views {
		items = append(items, mapGate(view.Gate, view.IsActive))
	}
	return httptransport.ListGatesResponse{CampaignID: campaignID, Items: items}, nil
}

func (h Handler) GetHistoryHandler(ctx context.Context, campaignID string) (httptransport.HistoryResponse, error) {
	transitions, err := h.GetHistory.Execute(ctx, campaignID)
	if err != nil {
		return httptransport.HistoryResponse{}, err
	}
	items := make([]httptransport.TransitionDTO, 0, len(transitions))
	for _, transition := range transitions {
		items = append(items, mapTransition(transition))
	}
	return httptransport.HistoryResponse{CampaignID: campaignID, Items: items}, nil
}

func (h Handler) AdvanceHandler(
	ctx context.Context,
	userID string,
	campaignID string,
	req httptransport.AdvanceRequest,
) (httptransport.AdvanceResponse, error) {
	requestedBy := req.RequestedBy
	if requestedBy == "" {
		requestedBy = userID
	}
	result, err := h.AdvanceWorkflow.Execute(ctx, commands.AdvanceWorkflowCommand{
		CampaignID:      campaignID,
		RequestedBy:     requestedBy,
		ExpectedStateID: req.ExpectedStateID,
		Notes:           req.Notes,
	})
	if err != nil {
		return httptransport.AdvanceResponse{}, err
	}
	return httptransport.AdvanceResponse{
		State:      mapProgress(result.Progress),
		Transition: mapTransition(result.Transition),
	}, nil
}

func (h Handler) ApproveGateHandler(
	ctx context.Context,
	userID string,
	gateID string,
	req httptransport.ApproveGateRequest,
) (httptransport.ApproveGateResponse, error) {
	approvedBy := req.ApprovedBy
	if approvedBy == "" {
		approvedBy = userID
	}
	result, err := h.ApproveGate.Execute(ctx, commands.ApproveGateCommand{
		GateID:     gateID,
		ApprovedBy: approvedBy,
		Notes:      req.Notes,
	})
	if err != nil {
		return httptransport.ApproveGateResponse{}, err
	}
	active := false
	if progress, err := h.GetCurrentState.Execute(ctx, result.Gate.CampaignID); err == nil {
		active = result.Gate.IsActive(progress.State.StateID)
	}
	return httptransport.ApproveGateResponse{
		Gate:     mapGate(result.Gate, active),
		Replayed: result.Replayed,
	}, nil
}

func (h Handler) ResetHandler(
	ctx context.Context,
	userID string,
	campaignID string,
	req httptransport.ResetRequest,
) (httptransport.ResetResponse, error) {
	result, err := h.ResetWorkflow.Execute(ctx, commands.ResetWorkflowCommand{
		CampaignID:  campaignID,
		RequestedBy: userID,
		Reason:      req.Reason,
	})
	if err != nil {
		return httptransport.ResetResponse{}, err
	}
	progress, err := h.GetCurrentState.Execute(ctx, result.Workflow.CampaignID)
	if err != nil {
		return httptransport.ResetResponse{}, err
	}
	return httptransport.ResetResponse{
		State:      mapProgress(progress),
		Transition: mapTransition(result.Transition),
	}, nil
}

func mapState(state entities.ProcessState) httptransport.ProcessStateDTO {
	return httptransport.ProcessStateDTO{
		StateID:     state.StateID,
		Name:        state.Name,
		Index:       state.Index,
		Description: state.Description,
		Icon:        state.Icon,
	}
}

func mapProgress(progress entities.Progress) httptransport.WorkflowStateResponse {
	response := httptransport.WorkflowStateResponse{
		CampaignID:     progress.Workflow.CampaignID,
		CurrentState:   mapState(progress.State),
		Index:          progress.Index,
		Total:          progress.Total,
		StateEnteredAt: progress.Workflow.StateEnteredAt.UTC().Format(time.RFC3339),
		IsTerminal:     progress.IsTerminal,
		CanAdvance:     progress.CanAdvance,
		Version:        progress.Workflow.Version,
	}
	if progress.PendingGate != nil {
		gateID := progress.PendingGateID
		gate := mapGate(*progress.PendingGate, true)
		response.PendingGateID = &gateID
		response.PendingGate = &gate
	}
	return response
}

func mapGate(gate entities.Gate, active bool) httptransport.GateDTO {
	var approvedAt *string
	if gate.ApprovedAt != nil {
		value := gate.ApprovedAt.UTC().Format(time.RFC3339Nano)
		approvedAt = &value
	}
	return httptransport.GateDTO{
		GateID:        gate.GateID,
		CampaignID:    gate.CampaignID,
		Code:          gate.Code,
		FromState:     gate.FromState,
		ToState:       gate.ToState,
		Name:          gate.Name,
		Description:   gate.Description,
		Status:        string(gate.Status),
		ApprovedBy:    gate.ApprovedBy,
		ApprovedAt:    approvedAt,
		ApprovalNotes: gate.ApprovalNotes,
		IsActive:      active,
	}
}

func mapTransition(transition entities.Transition) httptransport.TransitionDTO {
	return httptransport.TransitionDTO{
		TransitionID: transition.TransitionID,
		FromState:    transition.FromState,
		ToState:      transition.ToState,
		Kind:         string(transition.Kind),
		RequestedBy:  transition.RequestedBy,
		GateID:       transition.GateID,
		ApprovedBy:   transition.ApprovedBy,
		Notes:        transition.Notes,
		OccurredAt:   transition.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}
