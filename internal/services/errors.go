package services

import (
	"errors"
	"fmt"
)

// Intake error taxonomy. Validation and duplicate errors are the
// caller's fault and terminal; persistence errors are retryable.
var (
	ErrMissingFields    = errors.New("missing required fields")
	ErrInvalidTarget    = errors.New("invalid target type: must be post, comment, or user")
	ErrDuplicateReport  = errors.New("already reported within 24 hours")
	ErrReportNotFound   = errors.New("report not found")
	ErrBadTransition    = errors.New("invalid status transition")
	ErrInvalidSanction  = errors.New("invalid sanction: must be warn, suspend, ban, or remove_content")
	ErrSettingNotFound  = errors.New("setting not found")
	ErrTargetNotFound   = errors.New("target not found")
	ErrSanctionNoAuthor = errors.New("report has no target author to sanction")
)

// PersistenceError wraps a storage write failure so handlers can map
// it to a 5xx and callers know a retry is safe.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
