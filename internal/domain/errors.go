package domain

import (
	"fmt"
	"time"
)

// NotFoundError is returned when a referenced entity or assignment does not exist.
type NotFoundError struct {
	Kind EntityKind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// InvalidTransitionError is returned when an event is illegal for the current status.
type InvalidTransitionError struct {
	AssignmentID string
	From         Status
	Event        Transition
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s assignment %s in status %q", e.Event, e.AssignmentID, e.From)
}

// PreconditionFailedError is returned when a transition needs a timestamp that is missing.
type PreconditionFailedError struct {
	AssignmentID string
	Reason       string
}

func (e *PreconditionFailedError) Error() string {
	return fmt.Sprintf("precondition failed for assignment %s: %s", e.AssignmentID, e.Reason)
}

// InvalidTimeRangeError is returned when an end timestamp precedes its start.
type InvalidTimeRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidTimeRangeError) Error() string {
	return fmt.Sprintf("invalid time range: end %s is before start %s",
		e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
}

// ConflictError is returned when a conditional update found a status other than the expected one.
type ConflictError struct {
	AssignmentID string
	Expected     Status
	Version      int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("assignment %s was modified concurrently (expected status %q at version %d)",
		e.AssignmentID, e.Expected, e.Version)
}

// InvalidInputError is returned when a request is missing required fields or carries forbidden ones.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid input: field %q %s", e.Field, e.Reason)
}

// UnavailableError wraps a connectivity failure of the entity store.
// Callers may retry it with backoff.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
