package models

import (
	"errors"
	"fmt"
)

// TripState is the single source of truth for a bus's trip lifecycle.
// It is persisted in buses.status; bus_status.is_running is derived from it.
type TripState string

const (
	TripStateStopped TripState = "stopped"
	TripStateActive  TripState = "active"
	TripStatePaused  TripState = "paused"
)

// TripAction is a requested lifecycle transition
type TripAction string

const (
	TripActionStart  TripAction = "start"
	TripActionEnd    TripAction = "end"
	TripActionPause  TripAction = "pause"
	TripActionResume TripAction = "resume"
)

// ErrInvalidTransition is returned when an action is not legal from the current state
var ErrInvalidTransition = errors.New("invalid trip transition")

// transitions lists every legal (from, action) pair and its target state
var transitions = map[TripState]map[TripAction]TripState{
	TripStateStopped: {
		TripActionStart: TripStateActive,
	},
	TripStateActive: {
		TripActionPause: TripStatePaused,
		TripActionEnd:   TripStateStopped,
	},
	TripStatePaused: {
		TripActionResume: TripStateActive,
		TripActionEnd:    TripStateStopped,
	},
}

// ParseTripState maps a stored status to a TripState.
// Rows written before the enum existed may hold anything; those read as stopped.
func ParseTripState(s string) TripState {
	switch TripState(s) {
	case TripStateActive, TripStatePaused:
		return TripState(s)
	default:
		return TripStateStopped
	}
}

// IsRunning is the value mirrored into bus_status.is_running
func (s TripState) IsRunning() bool {
	return s != TripStateStopped
}

// Apply returns the state reached by performing action from s
func (s TripState) Apply(action TripAction) (TripState, error) {
	next, ok := transitions[s][action]
	if !ok {
		return s, fmt.Errorf("%w: cannot %s a trip that is %s", ErrInvalidTransition, action, s)
	}
	return next, nil
}

// ActivityType is the activity_logs.action_type recorded for the action
func (a TripAction) ActivityType() string {
	switch a {
	case TripActionStart:
		return "trip_started"
	case TripActionEnd:
		return "trip_ended"
	case TripActionPause:
		return "trip_paused"
	case TripActionResume:
		return "trip_resumed"
	default:
		return "trip_" + string(a)
	}
}

// PastTense is used in client messages, e.g. "Trip started successfully"
func (a TripAction) PastTense() string {
	switch a {
	case TripActionStart:
		return "started"
	case TripActionEnd:
		return "ended"
	case TripActionPause:
		return "paused"
	case TripActionResume:
		return "resumed"
	default:
		return string(a)
	}
}

// TripTransition is the outcome of a successful lifecycle change
type TripTransition struct {
	BusID     int64      `json:"bus_id"`
	Action    TripAction `json:"action"`
	From      TripState  `json:"previous_status"`
	To        TripState  `json:"status"`
	IsRunning bool       `json:"is_running"`
}
