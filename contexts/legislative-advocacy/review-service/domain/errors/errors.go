package errors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("concurrent modification")
	ErrStoreUnavailable = errors.New("store unavailable")
)

var (
	ErrArtifactNotFound      = fmt.Errorf("artifact %w", ErrNotFound)
	ErrArtifactExists        = fmt.Errorf("%w: artifact already registered for another document", ErrConflict)
	ErrStatusMismatch        = fmt.Errorf("%w: artifact review status changed", ErrConflict)
	ErrInvalidReviewStatus   = fmt.Errorf("%w: unknown review status", ErrValidation)
	ErrReviewerRequired      = fmt.Errorf("%w: reviewed_by is required", ErrValidation)
	ErrRevisionNotesRequired = fmt.Errorf("%w: review_notes are required when requesting a revision", ErrValidation)
	ErrInvalidArtifactInput  = fmt.Errorf("%w: invalid artifact input", ErrValidation)
)
