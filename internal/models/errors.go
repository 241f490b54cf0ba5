package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a referenced transaction id is absent.
var ErrNotFound = errors.New("transaction not found")

// ErrUnknownStatus is returned when a status value is outside the lifecycle set.
var ErrUnknownStatus = errors.New("unknown status")

// InvalidTransitionError reports a state machine violation.
type InvalidTransitionError struct {
	ID   string
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %s cannot transition from %s to %s", e.ID, e.From, e.To)
}

// ImmutableFieldError reports an attempted write to a write-once field.
type ImmutableFieldError struct {
	Field string
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("field %s is immutable", e.Field)
}

// ValidationError reports a malformed creation payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DependencyError wraps a failure of an external collaborator (store I/O,
// image storage service).
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// PartialFailureError reports a bulk operation where some items succeeded and
// some did not. FailedIDs lets the caller retry just those.
type PartialFailureError struct {
	Attempted int
	FailedIDs []string
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%d of %d deletions failed: %s",
		len(e.FailedIDs), e.Attempted, strings.Join(e.FailedIDs, ", "))
}
