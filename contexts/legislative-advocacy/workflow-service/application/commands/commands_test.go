package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"legisflow/contexts/legislative-advocacy/workflow-service/adapters/definition"
	"legisflow/contexts/legislative-advocacy/workflow-service/adapters/memory"
	"legisflow/contexts/legislative-advocacy/workflow-service/application/commands"
	"legisflow/contexts/legislative-advocacy/workflow-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/workflow-service/domain/errors"
)

type harness struct {
	store      *memory.Store
	initialize commands.InitializeWorkflowUseCase
	approve    commands.ApproveGateUseCase
	advance    commands.AdvanceWorkflowUseCase
	reset      commands.ResetWorkflowUseCase
}

func newHarness(t *testing.T) harness {
	t.Helper()
	store := memory.NewStore()
	catalog := definition.MustDefaultCatalog()
	return harness{
		store:      store,
		initialize: commands.InitializeWorkflowUseCase{Workflows: store, Catalog: catalog, Clock: store, IDGen: store},
		approve:    commands.ApproveGateUseCase{Workflows: store, Gates: store, Clock: store, IDGen: store},
		advance:    commands.AdvanceWorkflowUseCase{Workflows: store, Gates: store, Catalog: catalog, Clock: store, IDGen: store},
		reset:      commands.ResetWorkflowUseCase{Workflows: store, Catalog: catalog, Clock: store, IDGen: store},
	}
}

func (h harness) start(t *testing.T, campaignID string) commands.InitializeWorkflowResult {
	t.Helper()
	result, err := h.initialize.Execute(context.Background(), commands.InitializeWorkflowCommand{CampaignID: campaignID})
	if err != nil {
		t.Fatalf("initialize workflow: %v", err)
	}
	return result
}

func (h harness) gate(t *testing.T, campaignID string, code string) entities.Gate {
	t.Helper()
	gates, err := h.store.ListGates(context.Background(), campaignID)
	if err != nil {
		t.Fatalf("list gates: %v", err)
	}
	for _, gate := range gates {
		if gate.Code == code {
			return gate
		}
	}
	t.Fatalf("gate %s not found", code)
	return entities.Gate{}
}

func (h harness) mustAdvance(t *testing.T, campaignID string) commands.AdvanceWorkflowResult {
	t.Helper()
	result, err := h.advance.Execute(context.Background(), commands.AdvanceWorkflowCommand{CampaignID: campaignID, RequestedBy: "ops"})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	return result
}

func (h harness) mustApprove(t *testing.T, campaignID string, code string) commands.ApproveGateResult {
	t.Helper()
	result, err := h.approve.Execute(context.Background(), commands.ApproveGateCommand{
		GateID:     h.gate(t, campaignID, code).GateID,
		ApprovedBy: "Alice",
	})
	if err != nil {
		t.Fatalf("approve %s: %v", code, err)
	}
	return result
}

func TestInitializeCreatesFirstStateAndPendingGates(t *testing.T) {
	h := newHarness(t)
	result := h.start(t, "c1")

	if result.Workflow.CurrentStateID != "PRE_EVT" {
		t.Fatalf("expected PRE_EVT, got %s", result.Workflow.CurrentStateID)
	}
	if len(result.Gates) != 4 {
		t.Fatalf("expected 4 gates, got %d", len(result.Gates))
	}
	for _, gate := range result.Gates {
		if gate.Status != entities.GateStatusPending {
			t.Fatalf("expected pending gate, got %s", gate.Status)
		}
	}

	_, err := h.initialize.Execute(context.Background(), commands.InitializeWorkflowCommand{CampaignID: "c1"})
	if !errors.Is(err, domainerrors.ErrWorkflowExists) {
		t.Fatalf("expected workflow exists, got %v", err)
	}
}

func TestAdvanceBlockedUntilGateApproved(t *testing.T) {
	h := newHarness(t)
	h.start(t, "c1")

	_, err := h.advance.Execute(context.Background(), commands.AdvanceWorkflowCommand{CampaignID: "c1", RequestedBy: "ops"})
	if !errors.Is(err, domainerrors.ErrInvalidTransition) || !errors.Is(err, domainerrors.ErrGateNotApproved) {
		t.Fatalf("expected gate not approved, got %v", err)
	}
	workflow, _ := h.store.GetWorkflow(context.Background(), "c1")
	if workflow.CurrentStateID != "PRE_EVT" || workflow.Version != 1 {
		t.Fatalf("expected no mutation, got %s v%d", workflow.CurrentStateID, workflow.Version)
	}

	approved := h.mustApprove(t, "c1", "HR_PRE")
	if approved.Replayed || approved.Gate.ApprovedBy == nil || *approved.Gate.ApprovedBy != "Alice" {
		t.Fatalf("unexpected approval result: %+v", approved)
	}

	result := h.mustAdvance(t, "c1")
	if result.Workflow.CurrentStateID != "INTRO_EVT" || result.Progress.Index != 1 {
		t.Fatalf("expected INTRO_EVT at index 1, got %s/%d", result.Workflow.CurrentStateID, result.Progress.Index)
	}
	if result.Transition.GateID != approved.Gate.GateID || result.Transition.ApprovedBy != "Alice" {
		t.Fatalf("expected transition to record the gate, got %+v", result.Transition)
	}
}

func TestAdvanceUngatedEdge(t *testing.T) {
	h := newHarness(t)
	h.start(t, "c1")
	h.mustApprove(t, "c1", "HR_PRE")
	h.mustAdvance(t, "c1")

	result := h.mustAdvance(t, "c1")
	if result.Workflow.CurrentStateID != "COMM_EVT" {
		t.Fatalf("expected ungated advance to COMM_EVT, got %s", result.Workflow.CurrentStateID)
	}
	if result.Progress.CanAdvance || result.Progress.PendingGateID == "" {
		t.Fatalf("expected HR_LANG to be pending at COMM_EVT")
	}
}

func TestApproveIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.start(t, "c1")
	clock := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	h.store.SetNow(func() time.Time { return clock })

	first := h.mustApprove(t, "c1", "HR_PRE")
	clock = clock.Add(time.Hour)
	second := h.mustApprove(t, "c1", "HR_PRE")

	if !second.Replayed {
		t.Fatalf("expected second approval to be replayed")
	}
	if !first.Gate.ApprovedAt.Equal(*second.Gate.ApprovedAt) {
		t.Fatalf("expected same approved_at, got %v and %v", first.Gate.ApprovedAt, second.Gate.ApprovedAt)
	}
}

func TestApproveInactiveGateFails(t *testing.T) {
	h := newHarness(t)
	h.start(t, "c1")

	_, err := h.approve.Execute(context.Background(), commands.ApproveGateCommand{
		GateID:     h.gate(t, "c1", "HR_LANG").GateID,
		ApprovedBy: "Alice",
	})
	if !errors.Is(err, domainerrors.ErrInvalidTransition) || !errors.Is(err, domainerrors.ErrGateNotActive) {
		t.Fatalf("expected gate not active, got %v", err)
	}
	if h.gate(t, "c1", "HR_LANG").IsApproved() {
		t.Fatalf("expected inactive gate to stay pending")
	}
}

func TestApproveValidation(t *testing.T) {
	h := newHarness(t)
	h.start(t, "c1")

	_, err := h.approve.Execute(context.Background(), commands.ApproveGateCommand{GateID: h.gate(t, "c1", "HR_PRE").GateID})
	if !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = h.approve.Execute(context.Background(), commands.ApproveGateCommand{GateID: "missing", ApprovedBy: "Alice"})
	if !errors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdvanceAtTerminalState(t *testing.T) {
	h := newHarness(t)
	h.start(t, "c1")
	walkToTerminal(t, h, "c1")

	_, err := h.advance.Execute(context.Background(), commands.AdvanceWorkflowCommand{CampaignID: "c1", RequestedBy: "ops"})
	if !errors.Is(err, domainerrors.ErrAlreadyTerminal) {
		t.Fatalf("expected already terminal, got %v", err)
	}
}

func TestResetKeepsGateApprovals(t *testing.T) {
	h := newHarness(t)
	h.start(t, "c1")
	h.mustApprove(t, "c1", "HR_PRE")
	h.mustAdvance(t, "c1")
	h.mustAdvance(t, "c1")
	h.mustApprove(t, "c1", "HR_LANG")
	h.mustAdvance(t, "c1")
	workflow, _ := h.store.GetWorkflow(context.Background(), "c1")
	if workflow.CurrentStateID != "FLOOR_EVT" {
		t.Fatalf("expected FLOOR_EVT before reset, got %s", workflow.CurrentStateID)
	}

	result, err := h.reset.Execute(context.Background(), commands.ResetWorkflowCommand{CampaignID: "c1", RequestedBy: "admin", Reason: "restart"})
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if result.Workflow.CurrentStateID != "PRE_EVT" {
		t.Fatalf("expected PRE_EVT after reset, got %s", result.Workflow.CurrentStateID)
	}
	for _, code := range []string{"HR_PRE", "HR_LANG"} {
		if !h.gate(t, "c1", code).IsApproved() {
			t.Fatalf("expected %s to stay approved after reset", code)
		}
	}

	h.mustAdvance(t, "c1")
	h.mustAdvance(t, "c1")
	again := h.mustAdvance(t, "c1")
	if again.Workflow.CurrentStateID != "FLOOR_EVT" {
		t.Fatalf("expected re-advance through approved edges to FLOOR_EVT, got %s", again.Workflow.CurrentStateID)
	}

	history, _ := h.store.ListTransitions(context.Background(), "c1")
	if len(history) != 7 || history[3].Kind != entities.TransitionKindReset {
		t.Fatalf("expected reset recorded in history, got %d entries", len(history))
	}
}

func TestResetRequiresActor(t *testing.T) {
	h := newHarness(t)
	h.start(t, "c1")
	_, err := h.reset.Execute(context.Background(), commands.ResetWorkflowCommand{CampaignID: "c1"})
	if !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdvanceExpectedStateMismatch(t *testing.T) {
	h := newHarness(t)
	h.start(t, "c1")
	h.mustApprove(t, "c1", "HR_PRE")

	_, err := h.advance.Execute(context.Background(), commands.AdvanceWorkflowCommand{
		CampaignID:      "c1",
		RequestedBy:     "ops",
		ExpectedStateID: "INTRO_EVT",
	})
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestConcurrentAdvanceMovesOneStep(t *testing.T) {
	h := newHarness(t)
	h.start(t, "c1")
	h.mustApprove(t, "c1", "HR_PRE")
	h.mustAdvance(t, "c1")

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.advance.Execute(context.Background(), commands.AdvanceWorkflowCommand{
				CampaignID:      "c1",
				RequestedBy:     "ops",
				ExpectedStateID: "INTRO_EVT",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, domainerrors.ErrConflict) {
			t.Fatalf("expected conflict for losing callers, got %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful advance, got %d", succeeded)
	}
	workflow, _ := h.store.GetWorkflow(context.Background(), "c1")
	if workflow.CurrentStateID != "COMM_EVT" {
		t.Fatalf("expected COMM_EVT, got %s", workflow.CurrentStateID)
	}
}

func walkToTerminal(t *testing.T, h harness, campaignID string) {
	t.Helper()
	for i := 0; i < 5; i++ {
		workflow, _ := h.store.GetWorkflow(context.Background(), campaignID)
		for _, gate := range []string{"HR_PRE", "HR_LANG", "HR_MSG", "HR_RELEASE"} {
			if h.gate(t, campaignID, gate).FromState == workflow.CurrentStateID {
				h.mustApprove(t, campaignID, gate)
			}
		}
		h.mustAdvance(t, campaignID)
	}
}
