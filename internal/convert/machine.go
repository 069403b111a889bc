// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
)

// State is a step in one conversion attempt.
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
	StateError      State = "error"
	StatePreview    State = "preview"
)

// ErrIllegalTransition is returned for a transition the machine does not allow.
var ErrIllegalTransition = errors.New("illegal state transition")

var transitions = map[State][]State{
	StateIdle:       {StateProcessing},
	StateProcessing: {StateSuccess, StateError, StatePreview},
	StateSuccess:    {StateProcessing, StateIdle},
	StateError:      {StateProcessing, StateIdle},
	StatePreview:    {StateProcessing, StateError, StateIdle},
}

// Machine tracks idle → processing → {success | error | preview}. Preview
// waits for a column mapping and then re-enters processing. The zero value
// is idle. A Machine is owned by one caller and is not safe for concurrent use.
type Machine struct {
	state State
}

// State returns the current state.
func (m *Machine) State() State {
	if m.state == "" {
		return StateIdle
	}
	return m.state
}

// Transition moves to next or returns ErrIllegalTransition.
func (m *Machine) Transition(next State) error {
	cur := m.State()
	for _, allowed := range transitions[cur] {
		if allowed == next {
			m.state = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", ErrIllegalTransition, cur, next)
}

// Start enters processing.
func (m *Machine) Start() error { return m.Transition(StateProcessing) }

// Finish records the outcome of a run: error when err is non-nil, success
// otherwise.
func (m *Machine) Finish(err error) error {
	if err != nil {
		return m.Transition(StateError)
	}
	return m.Transition(StateSuccess)
}

// Reset returns to idle from any state.
func (m *Machine) Reset() { m.state = StateIdle }
