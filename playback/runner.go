package playback

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Tracker receives progress reports from a running player. The view
// tracking service satisfies this; tests substitute their own.
type Tracker interface {
	UpdateProgress(sessionID string, timeSpent, completedSteps int) error
	CloseSession(sessionID string, timeSpent, completedSteps int) error
}

const (
	DefaultStepInterval      = 5 * time.Second
	DefaultHeartbeatInterval = 15 * time.Second
)

// Runner drives a playback session: an auto-advance ticker moves the
// cursor while playing, a heartbeat ticker reports progress. Tracker
// errors are logged and swallowed, playback never stops for them.
type Runner struct {
	sessionID string
	tracker   Tracker

	stepInterval      time.Duration
	heartbeatInterval time.Duration

	mu      sync.Mutex
	state   State
	started time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func NewRunner(sessionID string, totalSteps int, tracker Tracker) *Runner {
	return &Runner{
		sessionID:         sessionID,
		tracker:           tracker,
		stepInterval:      DefaultStepInterval,
		heartbeatInterval: DefaultHeartbeatInterval,
		state:             NewState(totalSteps),
	}
}

// SetIntervals overrides the tickers; zero or negative values keep the
// defaults. Must be called before Start.
func (r *Runner) SetIntervals(step, heartbeat time.Duration) {
	if step > 0 {
		r.stepInterval = step
	}
	if heartbeat > 0 {
		r.heartbeatInterval = heartbeat
	}
}

// Start begins playback and launches the tickers. Calling Start on a
// running player is a no-op.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}

	r.started = time.Now()
	r.state.IsPlaying = true

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(ctx)
}

func (r *Runner) run(ctx context.Context) {
	defer close(r.done)

	stepTicker := time.NewTicker(r.stepInterval)
	defer stepTicker.Stop()

	heartbeat := time.NewTicker(r.heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-stepTicker.C:
			r.mu.Lock()
			if r.state.IsPlaying {
				r.state = r.state.Advance()
			}
			r.mu.Unlock()

		case <-heartbeat.C:
			r.report()

		case <-ctx.Done():
			return
		}
	}
}

// report sends the current snapshot to the tracker.
func (r *Runner) report() {
	sessionID, timeSpent, completed := r.snapshot()
	if r.tracker == nil {
		return
	}
	if err := r.tracker.UpdateProgress(sessionID, timeSpent, completed); err != nil {
		log.WithError(err).WithField("session_id", sessionID).Debug("Progress heartbeat failed")
	}
}

func (r *Runner) snapshot() (string, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timeSpent := 0
	if !r.started.IsZero() {
		timeSpent = int(time.Since(r.started).Seconds())
	}
	return r.sessionID, timeSpent, r.state.StepsCompleted()
}

// Stop cancels both tickers and sends a final close report. Safe to
// call more than once.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.cancel = nil
	r.state.IsPlaying = false
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	sessionID, timeSpent, completed := r.snapshot()
	if r.tracker == nil {
		return
	}
	if err := r.tracker.CloseSession(sessionID, timeSpent, completed); err != nil {
		log.WithError(err).WithField("session_id", sessionID).Debug("Session close report failed")
	}
}

// Advance steps forward manually, regardless of play state.
func (r *Runner) Advance() {
	r.mu.Lock()
	r.state = r.state.Advance()
	r.mu.Unlock()
}

// Retreat steps backward manually.
func (r *Runner) Retreat() {
	r.mu.Lock()
	r.state = r.state.Retreat()
	r.mu.Unlock()
}

// Restart rewinds to the first step.
func (r *Runner) Restart() {
	r.mu.Lock()
	r.state = r.state.Restart()
	r.mu.Unlock()
}

// TogglePlay flips play/pause.
func (r *Runner) TogglePlay() {
	r.mu.Lock()
	r.state = r.state.TogglePlay()
	r.mu.Unlock()
}

// State returns the current snapshot.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
