package engine

import (
	"errors"
	"fmt"
)

// State is a session lifecycle state.
type State int

const (
	StateIdle State = iota
	StatePreview
	StatePlaying
	StatePaused
	StateWon
	StateLost
	StateTimedOut
	StateReporting
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreview:
		return "preview"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateWon:
		return "won"
	case StateLost:
		return "lost"
	case StateTimedOut:
		return "timed_out"
	case StateReporting:
		return "reporting"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends gameplay.
func (s State) Terminal() bool {
	return s == StateWon || s == StateLost || s == StateTimedOut
}

var (
	// ErrInvalidTransition is returned for transitions the lifecycle forbids.
	ErrInvalidTransition = errors.New("engine: invalid state transition")
	// ErrNotPlaying is returned by operations that need an active session.
	ErrNotPlaying = errors.New("engine: session is not playing")
)

var transitions = map[State][]State{
	StateIdle:      {StatePreview, StatePlaying},
	StatePreview:   {StatePlaying, StateIdle},
	StatePlaying:   {StatePaused, StateWon, StateLost, StateTimedOut, StateIdle},
	StatePaused:    {StatePlaying, StateIdle},
	StateWon:       {StateReporting},
	StateLost:      {StateReporting},
	StateTimedOut:  {StateReporting},
	StateReporting: {StateIdle},
}

// Machine validates lifecycle transitions and keeps a trail of visited states.
type Machine struct {
	state State
	trail []State
}

// NewMachine creates a machine in Idle.
func NewMachine() *Machine {
	return &Machine{state: StateIdle, trail: []State{StateIdle}}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Can reports whether moving to next is allowed.
func (m *Machine) Can(next State) bool {
	for _, s := range transitions[m.state] {
		if s == next {
			return true
		}
	}
	return false
}

// To moves to next or returns ErrInvalidTransition.
func (m *Machine) To(next State) error {
	if !m.Can(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, next)
	}
	m.state = next
	m.trail = append(m.trail, next)
	return nil
}

// Trail returns the states visited since creation, oldest first.
func (m *Machine) Trail() []State {
	out := make([]State, len(m.trail))
	copy(out, m.trail)
	return out
}
