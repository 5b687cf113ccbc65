package entities

import (
	"fmt"

	domainerrors "legisflow/contexts/legislative-advocacy/workflow-service/domain/errors"
)

// Progress is the read model of a workflow's position.
type Progress struct {
	State         ProcessState
	Index         int
	Total         int
	IsTerminal    bool
	CanAdvance    bool
	PendingGateID string
	PendingGate   *Gate
	Workflow      CampaignWorkflow
}

// EvaluateProgress derives advanceability from the definition and the
// campaign's gates.
func EvaluateProgress(def ProcessDefinition, workflow CampaignWorkflow, gates []Gate) (Progress, error) {
	state, ok := def.State(workflow.CurrentStateID)
	if !ok {
		return Progress{}, fmt.Errorf("%w: unknown current state %q", domainerrors.ErrInvalidInput, workflow.CurrentStateID)
	}
	progress := Progress{
		State:      state,
		Index:      state.Index,
		Total:      def.Total(),
		IsTerminal: def.IsTerminal(state.StateID),
		Workflow:   workflow,
	}
	if progress.IsTerminal {
		return progress, nil
	}
	gate, gated := gateFrom(gates, state.StateID)
	if gated && !gate.IsApproved() {
		progress.PendingGateID = gate.GateID
		progress.PendingGate = &gate
		return progress, nil
	}
	progress.CanAdvance = true
	return progress, nil
}

// PlanAdvance returns the state the workflow moves to, and the gate that
// allowed it if the edge is gated.
func PlanAdvance(def ProcessDefinition, workflow CampaignWorkflow, gates []Gate) (ProcessState, *Gate, error) {
	if def.IsTerminal(workflow.CurrentStateID) {
		return ProcessState{}, nil, fmt.Errorf("%w: %s is the last state", domainerrors.ErrAlreadyTerminal, workflow.CurrentStateID)
	}
	next, ok := def.Next(workflow.CurrentStateID)
	if !ok {
		return ProcessState{}, nil, fmt.Errorf("%w: unknown current state %q", domainerrors.ErrInvalidInput, workflow.CurrentStateID)
	}
	gate, gated := gateFrom(gates, workflow.CurrentStateID)
	if !gated {
		return next, nil, nil
	}
	if !gate.IsApproved() {
		return ProcessState{}, nil, fmt.Errorf("%w: %s (%s) must be approved before leaving %s",
			domainerrors.ErrGateNotApproved, gate.Code, gate.Name, workflow.CurrentStateID)
	}
	return next, &gate, nil
}

type StateStatus string

const (
	StateStatusCompleted StateStatus = "completed"
	StateStatusCurrent   StateStatus = "current"
	StateStatusUpcoming  StateStatus = "upcoming"
)

type StateView struct {
	ProcessState
	Status StateStatus
}

// StateViews labels every state relative to currentIndex.
func StateViews(def ProcessDefinition, currentIndex int) []StateView {
	items := make([]StateView, 0, len(def.States))
	for _, state := range def.States {
		status := StateStatusUpcoming
		switch {
		case state.Index < currentIndex:
			status = StateStatusCompleted
		case state.Index == currentIndex:
			status = StateStatusCurrent
		}
		items = append(items, StateView{ProcessState: state, Status: status})
	}
	return items
}

func gateFrom(gates []Gate, stateID string) (Gate, bool) {
	for _, gate := range gates {
		if gate.FromState == stateID {
			return gate, true
		}
	}
	return Gate{}, false
}
