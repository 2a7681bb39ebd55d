package domain

import "time"

// Transition is a state-machine event applied to an assignment.
type Transition string

const (
	TransitionStart   Transition = "start"
	TransitionFinish  Transition = "finish"
	TransitionInspect Transition = "inspect"
	TransitionReopen  Transition = "reopen"
)

// ParseTransition maps an external event name to a Transition.
func ParseTransition(s string) (Transition, bool) {
	switch t := Transition(s); t {
	case TransitionStart, TransitionFinish, TransitionInspect, TransitionReopen:
		return t, true
	}
	return "", false
}

// EventType returns the lifecycle event emitted after t succeeds.
func (t Transition) EventType() EventType {
	switch t {
	case TransitionStart:
		return EventStarted
	case TransitionFinish:
		return EventFinished
	case TransitionInspect:
		return EventInspected
	default:
		return EventReopened
	}
}

// Next computes the patch produced by applying t to a at instant now.
// a is not modified. The returned patch must be written conditionally on
// a.Status still being current.
//
//	Dirty      --start-->   In Progress  (startTime = now if unset)
//	In Progress --finish--> Clean        (endTime = now, totalMinutes derived)
//	Clean      --inspect--> Inspected
//	any        --reopen-->  Dirty        (timestamps and totalMinutes cleared)
func Next(a *Assignment, t Transition, now time.Time) (Patch, error) {
	cur := Patch{
		Status:       a.Status,
		StartTime:    a.StartTime,
		EndTime:      a.EndTime,
		TotalMinutes: a.TotalMinutes,
	}
	invalid := &InvalidTransitionError{AssignmentID: a.ID, From: a.Status, Event: t}

	switch t {
	case TransitionStart:
		if a.Status != StatusDirty {
			return Patch{}, invalid
		}
		cur.Status = StatusInProgress
		if cur.StartTime == nil {
			start := now
			cur.StartTime = &start
		}
		return cur, nil

	case TransitionFinish:
		if a.Status != StatusInProgress {
			return Patch{}, invalid
		}
		if a.StartTime == nil {
			return Patch{}, &PreconditionFailedError{AssignmentID: a.ID, Reason: "startTime is not set"}
		}
		end := now
		minutes, err := Minutes(*a.StartTime, end)
		if err != nil {
			return Patch{}, err
		}
		cur.Status = StatusClean
		cur.EndTime = &end
		cur.TotalMinutes = minutes
		return cur, nil

	case TransitionInspect:
		if a.Status != StatusClean {
			return Patch{}, invalid
		}
		cur.Status = StatusInspected
		return cur, nil

	case TransitionReopen:
		return Patch{Status: StatusDirty}, nil
	}
	return Patch{}, invalid
}
