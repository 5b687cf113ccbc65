package errors

import (
	"errors"
	"fmt"
)

// Categories. Callers match these with errors.Is; the specific errors below
// wrap exactly one of them.
var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("concurrent modification")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

var (
	ErrGateNotApproved  = fmt.Errorf("%w: gate approval required", ErrInvalidTransition)
	ErrAlreadyTerminal  = fmt.Errorf("%w: workflow is already in the terminal state", ErrInvalidTransition)
	ErrGateNotActive    = fmt.Errorf("%w: gate is not active for the current state", ErrInvalidTransition)
	ErrWorkflowNotFound = fmt.Errorf("workflow %w", ErrNotFound)
	ErrGateNotFound     = fmt.Errorf("gate %w", ErrNotFound)
	ErrProcessNotFound  = fmt.Errorf("process %w", ErrNotFound)
	ErrWorkflowExists   = fmt.Errorf("%w: workflow already exists", ErrConflict)
	ErrStateMismatch    = fmt.Errorf("%w: workflow is no longer in the expected state", ErrConflict)
	ErrActorRequired    = fmt.Errorf("%w: actor is required", ErrValidation)
	ErrInvalidInput     = fmt.Errorf("%w: invalid workflow input", ErrValidation)
	ErrInvalidProcess   = errors.New("invalid process definition")
)
