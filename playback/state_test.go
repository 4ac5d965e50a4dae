package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewState(t *testing.T) {
	s := NewState(5)
	assert.Equal(t, 0, s.StepIndex)
	assert.False(t, s.IsPlaying)
	assert.Equal(t, 5, s.TotalSteps)

	s = NewState(-1)
	assert.Equal(t, 0, s.TotalSteps)
}

func TestAdvance(t *testing.T) {
	s := NewState(3)

	s = s.Advance()
	assert.Equal(t, 1, s.StepIndex)

	s = s.Advance()
	assert.Equal(t, 2, s.StepIndex)
	assert.True(t, s.Finished())
}

func TestAdvanceStopsAtEnd(t *testing.T) {
	s := NewState(2)
	s.IsPlaying = true

	s = s.Advance()
	assert.Equal(t, 1, s.StepIndex)
	assert.False(t, s.IsPlaying)

	// Advancing past the end pins the cursor.
	s = s.Advance()
	assert.Equal(t, 1, s.StepIndex)
}

func TestAdvanceEmptyDemo(t *testing.T) {
	s := NewState(0)
	s = s.Advance()
	assert.Equal(t, 0, s.StepIndex)
	assert.Equal(t, 0, s.StepsCompleted())
}

func TestRetreat(t *testing.T) {
	s := NewState(3)
	s = s.Advance().Advance()

	s = s.Retreat()
	assert.Equal(t, 1, s.StepIndex)

	s = s.Retreat().Retreat()
	assert.Equal(t, 0, s.StepIndex)
}

func TestRestart(t *testing.T) {
	s := NewState(4)
	s.IsPlaying = true
	s = s.Advance().Advance()

	s = s.Restart()
	assert.Equal(t, 0, s.StepIndex)
	assert.False(t, s.IsPlaying)
}

func TestTogglePlay(t *testing.T) {
	s := NewState(3)

	s = s.TogglePlay()
	assert.True(t, s.IsPlaying)

	s = s.TogglePlay()
	assert.False(t, s.IsPlaying)
}

func TestTogglePlayAfterFinishRestarts(t *testing.T) {
	s := NewState(2)
	s = s.Advance()
	assert.True(t, s.Finished())

	s = s.TogglePlay()
	assert.True(t, s.IsPlaying)
	assert.Equal(t, 0, s.StepIndex)
}

func TestTogglePlayEmptyDemo(t *testing.T) {
	s := NewState(0)
	s = s.TogglePlay()
	assert.False(t, s.IsPlaying)
}

func TestStepsCompleted(t *testing.T) {
	s := NewState(4)
	assert.Equal(t, 1, s.StepsCompleted())

	s = s.Advance().Advance().Advance()
	assert.Equal(t, 4, s.StepsCompleted())
}
