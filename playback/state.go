// Package playback implements the client-side demo player model: a
// step cursor with play/pause semantics and a runner that drives
// auto-advance and progress heartbeats.
package playback

// State is one snapshot of a player. Transitions are pure so they can
// be driven from a ticker, a keypress, or a test without caring which.
type State struct {
	StepIndex  int
	IsPlaying  bool
	TotalSteps int
}

// NewState starts at the first step, paused.
func NewState(totalSteps int) State {
	if totalSteps < 0 {
		totalSteps = 0
	}
	return State{TotalSteps: totalSteps}
}

// Advance moves to the next step. Reaching the end stops playback and
// pins the cursor at the last step.
func (s State) Advance() State {
	if s.TotalSteps == 0 {
		return s
	}
	if s.StepIndex >= s.TotalSteps-1 {
		s.StepIndex = s.TotalSteps - 1
		s.IsPlaying = false
		return s
	}
	s.StepIndex++
	return s
}

// Retreat moves to the previous step, never below zero.
func (s State) Retreat() State {
	if s.StepIndex > 0 {
		s.StepIndex--
	}
	return s
}

// Restart rewinds to the first step and pauses.
func (s State) Restart() State {
	s.StepIndex = 0
	s.IsPlaying = false
	return s
}

// TogglePlay flips play/pause. Toggling play on a finished run restarts
// from the top.
func (s State) TogglePlay() State {
	if s.TotalSteps == 0 {
		return s
	}
	if !s.IsPlaying && s.Finished() {
		s.StepIndex = 0
	}
	s.IsPlaying = !s.IsPlaying
	return s
}

// Finished reports whether the cursor sits on the last step.
func (s State) Finished() bool {
	return s.TotalSteps > 0 && s.StepIndex == s.TotalSteps-1
}

// StepsCompleted is the progress value reported to tracking: steps the
// viewer has moved past, counting the current one once reached.
func (s State) StepsCompleted() int {
	if s.TotalSteps == 0 {
		return 0
	}
	return s.StepIndex + 1
}
