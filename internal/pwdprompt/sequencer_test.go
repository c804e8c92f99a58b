package pwdprompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

func TestStepCountDependsOnReason(t *testing.T) {
	tests := []struct {
		reason model.PwdReason
		want   int
	}{
		{reason: model.PwdReasonResetByAdmin, want: 2},
		{reason: model.PwdReasonFirstLogin, want: 3},
		{reason: model.PwdReasonUnknown, want: 3},
		{reason: model.PwdReason("QUALQUER_COISA"), want: 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			s := New()
			s.OpenWith(tt.reason)
			assert.Equal(t, tt.want, s.StepMax())
			assert.Equal(t, 1, s.Step())
			assert.True(t, s.Snapshot().Open)
		})
	}
}

func TestNextPrevClamped(t *testing.T) {
	s := New()
	s.OpenWith(model.PwdReasonFirstLogin)

	s.Prev()
	assert.Equal(t, 1, s.Step(), "no step below 1")

	s.Next()
	s.Next()
	assert.Equal(t, 3, s.Step())
	s.Next()
	assert.Equal(t, 3, s.Step(), "no step past the last")

	s.Prev()
	assert.Equal(t, 2, s.Step())
}

func TestClosedSequencerIgnoresNavigation(t *testing.T) {
	s := New()

	s.Next()
	assert.Equal(t, 1, s.Step())

	state := s.Snapshot()
	assert.False(t, state.Open)
	assert.False(t, state.Completed)
}

func TestCompleteSuccessIsTerminal(t *testing.T) {
	s := New()
	s.OpenWith(model.PwdReasonResetByAdmin)
	s.Next()

	s.CompleteSuccess()

	state := s.Snapshot()
	assert.False(t, state.Open)

	// No movement in either direction once the change succeeded.
	s.Prev()
	assert.Equal(t, 2, s.Step())
	s.Next()
	assert.Equal(t, 2, s.Step())

	// Completing a closed sequencer again does nothing.
	s.CompleteSuccess()
}

func TestReopenResetsState(t *testing.T) {
	s := New()
	s.OpenWith(model.PwdReasonResetByAdmin)
	s.Next()
	s.CompleteSuccess()

	s.OpenWith(model.PwdReasonFirstLogin)

	state := s.Snapshot()
	assert.True(t, state.Open)
	assert.False(t, state.Completed)
	assert.Equal(t, 1, state.Step)
	assert.Equal(t, 3, state.StepMax)
}

func TestTransitionsArriveInOrder(t *testing.T) {
	s := New()

	s.OpenWith(model.PwdReasonFirstLogin)
	s.Next()
	s.Next()
	s.CompleteSuccess()

	var steps []int
	var sawCompleted bool
	for i := 0; i < 4; i++ {
		msg := s.WaitForState()()
		state, ok := msg.(StateMsg)
		require.True(t, ok)
		steps = append(steps, state.Step)
		sawCompleted = sawCompleted || state.Completed
	}

	assert.Equal(t, []int{1, 2, 3, 3}, steps)
	assert.True(t, sawCompleted)
}
