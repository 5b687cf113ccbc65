package entities

import (
	"fmt"
	"strings"

	domainerrors "legisflow/contexts/legislative-advocacy/workflow-service/domain/errors"
)

// ProcessState is one node of the ordered legislative pipeline.
type ProcessState struct {
	StateID     string
	Name        string
	Index       int
	Description string
	Icon        string
}

// GateTemplate describes the approval required on one edge of the pipeline.
// Every campaign gets its own Gate instance per template.
type GateTemplate struct {
	Code        string `yaml:"code"`
	FromState   string `yaml:"from"`
	ToState     string `yaml:"to"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type ProcessDefinition struct {
	ProcessID string
	Name      string
	States    []ProcessState
	Gates     []GateTemplate

	byID map[string]int
}

// Normalized trims identifiers and validates the result. Indexes are taken
// as given; loaders fill omitted ones before calling it.
func (d ProcessDefinition) Normalized() (ProcessDefinition, error) {
	out := ProcessDefinition{
		ProcessID: strings.TrimSpace(d.ProcessID),
		Name:      strings.TrimSpace(d.Name),
		States:    make([]ProcessState, 0, len(d.States)),
		Gates:     make([]GateTemplate, 0, len(d.Gates)),
	}
	if out.ProcessID == "" {
		out.ProcessID = "legislative"
	}
	for _, state := range d.States {
		state.StateID = strings.TrimSpace(state.StateID)
		state.Name = strings.TrimSpace(state.Name)
		state.Description = strings.TrimSpace(state.Description)
		out.States = append(out.States, state)
	}
	for _, gate := range d.Gates {
		gate.Code = strings.TrimSpace(gate.Code)
		gate.FromState = strings.TrimSpace(gate.FromState)
		gate.ToState = strings.TrimSpace(gate.ToState)
		gate.Name = strings.TrimSpace(gate.Name)
		gate.Description = strings.TrimSpace(gate.Description)
		out.Gates = append(out.Gates, gate)
	}
	if err := out.Validate(); err != nil {
		return ProcessDefinition{}, err
	}
	out.byID = make(map[string]int, len(out.States))
	for i, state := range out.States {
		out.byID[state.StateID] = i
	}
	return out, nil
}

// Validate checks the structural rules of a pipeline: unique states in index
// order and gates that only join adjacent states in the forward direction.
func (d ProcessDefinition) Validate() error {
	if len(d.States) == 0 {
		return fmt.Errorf("%w: at least one state is required", domainerrors.ErrInvalidProcess)
	}
	indexByID := make(map[string]int, len(d.States))
	for position, state := range d.States {
		if state.StateID == "" {
			return fmt.Errorf("%w: state at position %d has no id", domainerrors.ErrInvalidProcess, position)
		}
		if _, dup := indexByID[state.StateID]; dup {
			return fmt.Errorf("%w: duplicate state %q", domainerrors.ErrInvalidProcess, state.StateID)
		}
		if state.Index != position {
			return fmt.Errorf("%w: state %q has index %d, expected %d",
				domainerrors.ErrInvalidProcess, state.StateID, state.Index, position)
		}
		indexByID[state.StateID] = position
	}

	terminal := d.States[len(d.States)-1].StateID
	codes := make(map[string]struct{}, len(d.Gates))
	edges := make(map[string]string, len(d.Gates))
	for _, gate := range d.Gates {
		if gate.Code == "" {
			return fmt.Errorf("%w: gate from %q has no code", domainerrors.ErrInvalidProcess, gate.FromState)
		}
		if _, dup := codes[gate.Code]; dup {
			return fmt.Errorf("%w: duplicate gate code %q", domainerrors.ErrInvalidProcess, gate.Code)
		}
		codes[gate.Code] = struct{}{}

		from, ok := indexByID[gate.FromState]
		if !ok {
			return fmt.Errorf("%w: gate %q references unknown state %q",
				domainerrors.ErrInvalidProcess, gate.Code, gate.FromState)
		}
		to, ok := indexByID[gate.ToState]
		if !ok {
			return fmt.Errorf("%w: gate %q references unknown state %q",
				domainerrors.ErrInvalidProcess, gate.Code, gate.ToState)
		}
		if gate.FromState == terminal {
			return fmt.Errorf("%w: gate %q leaves the terminal state", domainerrors.ErrInvalidProcess, gate.Code)
		}
		if to != from+1 {
			return fmt.Errorf("%w: gate %q joins non-adjacent states %q -> %q",
				domainerrors.ErrInvalidProcess, gate.Code, gate.FromState, gate.ToState)
		}
		if other, dup := edges[gate.FromState]; dup {
			return fmt.Errorf("%w: gates %q and %q share edge from %q",
				domainerrors.ErrInvalidProcess, other, gate.Code, gate.FromState)
		}
		edges[gate.FromState] = gate.Code
	}
	return nil
}

func (d ProcessDefinition) Total() int {
	return len(d.States)
}

func (d ProcessDefinition) First() ProcessState {
	return d.States[0]
}

func (d ProcessDefinition) IsTerminal(stateID string) bool {
	return len(d.States) > 0 && d.States[len(d.States)-1].StateID == stateID
}

func (d ProcessDefinition) State(stateID string) (ProcessState, bool) {
	if d.byID != nil {
		i, ok := d.byID[stateID]
		if !ok {
			return ProcessState{}, false
		}
		return d.States[i], true
	}
	for _, state := range d.States {
		if state.StateID == stateID {
			return state, true
		}
	}
	return ProcessState{}, false
}

// Next returns the state following stateID. ok is false at the terminal state
// or for an unknown id.
func (d ProcessDefinition) Next(stateID string) (ProcessState, bool) {
	current, ok := d.State(stateID)
	if !ok || current.Index+1 >= len(d.States) {
		return ProcessState{}, false
	}
	return d.States[current.Index+1], true
}

// GateFrom returns the gate template guarding the edge out of stateID.
func (d ProcessDefinition) GateFrom(stateID string) (GateTemplate, bool) {
	for _, gate := range d.Gates {
		if gate.FromState == stateID {
			return gate, true
		}
	}
	return GateTemplate{}, false
}
