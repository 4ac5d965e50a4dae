package playback

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTracker struct {
	mu        sync.Mutex
	updates   int
	closes    int
	lastSteps int
	err       error
}

func (f *fakeTracker) UpdateProgress(sessionID string, timeSpent, completedSteps int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	f.lastSteps = completedSteps
	return f.err
}

func (f *fakeTracker) CloseSession(sessionID string, timeSpent, completedSteps int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	f.lastSteps = completedSteps
	return f.err
}

func (f *fakeTracker) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates, f.closes
}

func TestRunnerAutoAdvance(t *testing.T) {
	tracker := &fakeTracker{}
	r := NewRunner("session-1", 3, tracker)
	r.SetIntervals(10*time.Millisecond, time.Hour)

	r.Start()
	defer r.Stop()

	require.Eventually(t, func() bool {
		return r.State().Finished()
	}, time.Second, 5*time.Millisecond)

	s := r.State()
	assert.Equal(t, 2, s.StepIndex)
	assert.False(t, s.IsPlaying)
}

func TestRunnerHeartbeat(t *testing.T) {
	tracker := &fakeTracker{}
	r := NewRunner("session-1", 5, tracker)
	r.SetIntervals(time.Hour, 10*time.Millisecond)

	r.Start()
	defer r.Stop()

	require.Eventually(t, func() bool {
		updates, _ := tracker.counts()
		return updates >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestRunnerStopSendsClose(t *testing.T) {
	tracker := &fakeTracker{}
	r := NewRunner("session-1", 5, tracker)
	r.SetIntervals(time.Hour, time.Hour)

	r.Start()
	r.Advance()
	r.Advance()
	r.Stop()

	_, closes := tracker.counts()
	assert.Equal(t, 1, closes)
	assert.Equal(t, 3, tracker.lastSteps)
}

func TestRunnerStopIsIdempotent(t *testing.T) {
	tracker := &fakeTracker{}
	r := NewRunner("session-1", 3, tracker)
	r.SetIntervals(time.Hour, time.Hour)

	r.Start()
	r.Stop()
	r.Stop()

	_, closes := tracker.counts()
	assert.Equal(t, 1, closes)
}

func TestRunnerStartIsIdempotent(t *testing.T) {
	tracker := &fakeTracker{}
	r := NewRunner("session-1", 3, tracker)
	r.SetIntervals(time.Hour, time.Hour)

	r.Start()
	r.Start()
	r.Stop()

	_, closes := tracker.counts()
	assert.Equal(t, 1, closes)
}

// Tracker failures never interrupt playback.
func TestRunnerSurvivesTrackerErrors(t *testing.T) {
	tracker := &fakeTracker{err: errors.New("store down")}
	r := NewRunner("session-1", 3, tracker)
	r.SetIntervals(10*time.Millisecond, 10*time.Millisecond)

	r.Start()

	require.Eventually(t, func() bool {
		updates, _ := tracker.counts()
		return updates >= 2 && r.State().Finished()
	}, time.Second, 5*time.Millisecond)

	r.Stop()
}

func TestRunnerManualControls(t *testing.T) {
	r := NewRunner("session-1", 4, nil)

	r.Advance()
	r.Advance()
	assert.Equal(t, 2, r.State().StepIndex)

	r.Retreat()
	assert.Equal(t, 1, r.State().StepIndex)

	r.Restart()
	assert.Equal(t, 0, r.State().StepIndex)

	r.TogglePlay()
	assert.True(t, r.State().IsPlaying)
}
