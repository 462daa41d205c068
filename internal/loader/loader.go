package loader

import (
	"context"
	"sync"
	"time"

	"showcase/internal/timer"

	"go.uber.org/zap"
)

// State of the article source as seen by the view
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Options configures the delays before each load attempt
type Options struct {
	InitialDelay time.Duration
	RetryDelay   time.Duration
}

// Loader models a fetch lifecycle: loading until an attempt succeeds,
// error when it fails, and back to loading on Retry. Like timer.Slot it
// shares its owner's lock; every method must be called with it held and
// observers run with it held.
type Loader struct {
	slot      *timer.Slot
	attempter Attempter
	opts      Options
	ctx       context.Context
	cancel    context.CancelFunc

	state     State
	lastErr   error
	attempts  int
	started   bool
	observers []func(State)
}

func New(lock sync.Locker, clock timer.Clock, attempter Attempter, opts Options) *Loader {
	if attempter == nil {
		attempter = Succeed{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		slot:      timer.NewSlot(clock, lock),
		attempter: attempter,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		state:     StateLoading,
	}
}

// OnChange registers fn to be called after every state transition
func (l *Loader) OnChange(fn func(State)) {
	l.observers = append(l.observers, fn)
}

// Start schedules the initial load. Calling it again has no effect.
func (l *Loader) Start() {
	if l.started {
		return
	}
	l.started = true
	l.schedule(l.opts.InitialDelay)
}

// Retry restarts loading after a failure. It reports false unless the
// loader was in the error state.
func (l *Loader) Retry() bool {
	if l.state != StateError {
		return false
	}
	l.lastErr = nil
	l.transition(StateLoading)
	l.schedule(l.opts.RetryDelay)
	return true
}

func (l *Loader) State() State {
	return l.state
}

func (l *Loader) Ready() bool {
	return l.state == StateReady
}

// Err returns the cause of the error state
func (l *Loader) Err() error {
	return l.lastErr
}

// Attempts returns how many load attempts completed
func (l *Loader) Attempts() int {
	return l.attempts
}

// Close cancels a pending attempt. The loader stays in its current state.
func (l *Loader) Close() {
	l.slot.Close()
	l.cancel()
}

func (l *Loader) schedule(delay time.Duration) {
	l.slot.Schedule(delay, l.attempt)
}

func (l *Loader) attempt() {
	l.attempts++
	if err := l.attempter.Attempt(l.ctx); err != nil {
		zap.S().Warnf("Article load attempt %d failed: %v", l.attempts, err)
		l.lastErr = err
		l.transition(StateError)
		return
	}
	l.transition(StateReady)
}

func (l *Loader) transition(to State) {
	if l.state == to {
		return
	}
	l.state = to
	for _, fn := range l.observers {
		fn(to)
	}
}
