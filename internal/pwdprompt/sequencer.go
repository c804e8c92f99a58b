// Package pwdprompt sequences the mandatory password-change modal:
// a linear run of steps whose length depends on why the change was
// demanded. Admin-reset flows are shorter than first-login flows,
// which include an onboarding tour.
package pwdprompt

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

const (
	stepsResetByAdmin = 2
	stepsDefault      = 3
)

// StateMsg is a tea.Msg carrying a sequencer transition. Every
// subscriber sees every transition in order.
type StateMsg struct {
	Open    bool
	Reason  model.PwdReason
	Step    int
	StepMax int

	// Completed is set on the transition fired by a successful
	// password submission; the UI reacts with a countdown and a
	// dashboard redirect.
	Completed bool
}

// Sequencer is the modal step state machine.
type Sequencer struct {
	mu        sync.Mutex
	open      bool
	reason    model.PwdReason
	step      int
	stepMax   int
	completed bool

	events chan StateMsg
}

// New creates a closed sequencer.
func New() *Sequencer {
	return &Sequencer{
		reason:  model.PwdReasonUnknown,
		step:    1,
		stepMax: stepsDefault,
		events:  make(chan StateMsg, 16),
	}
}

// OpenWith resets to step 1 for the given reason and opens the modal.
func (s *Sequencer) OpenWith(reason model.PwdReason) {
	s.mu.Lock()
	s.reason = model.NormalizeReason(string(reason))
	s.stepMax = stepsDefault
	if s.reason == model.PwdReasonResetByAdmin {
		s.stepMax = stepsResetByAdmin
	}
	s.step = 1
	s.open = true
	s.completed = false
	state := s.stateLocked()
	s.mu.Unlock()

	s.publish(state)
}

// Open opens the modal with an unknown reason.
func (s *Sequencer) Open() { s.OpenWith(model.PwdReasonUnknown) }

// Close returns the sequencer to the closed state.
func (s *Sequencer) Close() {
	s.mu.Lock()
	s.open = false
	state := s.stateLocked()
	s.mu.Unlock()

	s.publish(state)
}

// Next advances one step, clamped at the final step.
func (s *Sequencer) Next() {
	s.mu.Lock()
	if !s.open || s.completed || s.step >= s.stepMax {
		s.mu.Unlock()
		return
	}
	s.step++
	state := s.stateLocked()
	s.mu.Unlock()

	s.publish(state)
}

// Prev moves one step back, clamped at step 1. Once the terminal step's
// submission has succeeded no backward transition is possible.
func (s *Sequencer) Prev() {
	s.mu.Lock()
	if !s.open || s.completed || s.step <= 1 {
		s.mu.Unlock()
		return
	}
	s.step--
	state := s.stateLocked()
	s.mu.Unlock()

	s.publish(state)
}

// CompleteSuccess records that the terminal "set password" step
// succeeded: the modal hard-closes and the UI redirects to the
// dashboard after its countdown.
func (s *Sequencer) CompleteSuccess() {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return
	}
	s.completed = true
	s.open = false
	state := s.stateLocked()
	state.Completed = true
	s.mu.Unlock()

	s.publish(state)
}

// Snapshot returns the current state.
func (s *Sequencer) Snapshot() StateMsg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Step returns the current step number.
func (s *Sequencer) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// StepMax returns the step count for the current reason.
func (s *Sequencer) StepMax() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepMax
}

// stateLocked builds a StateMsg. Caller holds the mutex.
func (s *Sequencer) stateLocked() StateMsg {
	return StateMsg{
		Open:    s.open,
		Reason:  s.reason,
		Step:    s.step,
		StepMax: s.stepMax,
	}
}

// publish delivers a transition without blocking.
func (s *Sequencer) publish(state StateMsg) {
	select {
	case s.events <- state:
	default:
	}
}

// WaitForState returns a tea.Cmd that blocks until the next transition.
// After handling the message, call it again to keep listening.
func (s *Sequencer) WaitForState() tea.Cmd {
	return func() tea.Msg {
		state, ok := <-s.events
		if !ok {
			return nil
		}
		return state
	}
}
