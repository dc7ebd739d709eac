package service

import (
	"errors"
)

// ErrAlreadyStarted is returned by Start when the service is not idle.
var ErrAlreadyStarted = errors.New("service already started")

// State represents the service lifecycle state.
type State uint8

const (
	// StateIdle - service created but not started.
	StateIdle State = iota

	// StateRunning - service is running normally.
	StateRunning

	// StateStopped - service has stopped.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}
