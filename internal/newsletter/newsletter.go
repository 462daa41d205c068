package newsletter

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"showcase/internal/loader"
	"showcase/internal/notify"
	"showcase/internal/timer"

	"go.uber.org/zap"
)

// State of a subscription form
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSuccess    State = "success"
	StateError      State = "error"
)

const (
	MsgRequired = "Email address is required"
	MsgInvalid  = "Please enter a valid email address"
	MsgFailed   = "Failed to subscribe. Please try again."
	MsgSuccess  = "Successfully subscribed to our newsletter!"
)

var (
	// ErrBusy is returned when a submission is already in flight
	ErrBusy = errors.New("subscription already in progress")

	ErrRequired = errors.New(MsgRequired)
	ErrInvalid  = errors.New(MsgInvalid)

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidateEmail checks the local-part@domain.tld shape
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrRequired
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalid
	}
	return nil
}

type Options struct {
	Delay     time.Duration
	Attempter loader.Attempter
	Clock     timer.Clock
	Notifier  notify.Notifier
}

// Form is the footer subscription form. Validation happens synchronously on
// Submit; the subscription request completes after Delay.
type Form struct {
	mu        sync.Mutex
	slot      *timer.Slot
	attempter loader.Attempter
	notifier  notify.Notifier
	delay     time.Duration
	ctx       context.Context
	cancel    context.CancelFunc

	state    State
	email    string
	errorMsg string
}

func NewForm(opts Options) *Form {
	if opts.Delay <= 0 {
		opts.Delay = time.Second
	}
	if opts.Attempter == nil {
		opts.Attempter = loader.Succeed{}
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	f := &Form{
		attempter: opts.Attempter,
		notifier:  opts.Notifier,
		delay:     opts.Delay,
		ctx:       ctx,
		cancel:    cancel,
		state:     StateIdle,
	}
	f.slot = timer.NewSlot(opts.Clock, &f.mu)
	return f
}

// SetEmail updates the input. Editing after an error clears it; edits while
// a request is in flight are ignored.
func (f *Form) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateValidating {
		return
	}
	f.email = email
	if f.state == StateError {
		f.state = StateIdle
		f.errorMsg = ""
	}
}

// Submit validates the email and starts the subscription request
func (f *Form) Submit() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateValidating {
		return f.state, ErrBusy
	}

	if err := ValidateEmail(f.email); err != nil {
		f.state = StateError
		f.errorMsg = err.Error()
		return f.state, err
	}

	f.state = StateValidating
	f.errorMsg = ""
	f.slot.Schedule(f.delay, f.complete)
	return f.state, nil
}

// complete runs with f.mu held
func (f *Form) complete() {
	if err := f.attempter.Attempt(f.ctx); err != nil {
		zap.S().Warnf("Newsletter subscription failed: %v", err)
		f.state = StateError
		f.errorMsg = MsgFailed
		f.notifier.Notify(MsgFailed, notify.KindError)
		return
	}

	f.state = StateSuccess
	f.email = ""
	f.notifier.Notify(MsgSuccess, notify.KindSuccess)
}

// Snapshot is the renderable state of the form
type Snapshot struct {
	State State  `json:"state"`
	Email string `json:"email"`
	Error string `json:"error,omitempty"`
}

func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{State: f.state, Email: f.email, Error: f.errorMsg}
}

// Close abandons an in-flight request
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slot.Close()
	f.cancel()
}
