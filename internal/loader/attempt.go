package loader

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrSimulatedFailure is returned by RandomAttempter when the dice say so
var ErrSimulatedFailure = errors.New("simulated failure")

// Attempter performs one try of an operation whose outcome the state
// machines react to: a fetch, a subscription request.
type Attempter interface {
	Attempt(ctx context.Context) error
}

// AttemptFunc adapts a function to Attempter
type AttemptFunc func(ctx context.Context) error

func (f AttemptFunc) Attempt(ctx context.Context) error {
	return f(ctx)
}

// Succeed always succeeds
type Succeed struct{}

func (Succeed) Attempt(ctx context.Context) error {
	return ctx.Err()
}

// RandomAttempter fails with probability failureRate
type RandomAttempter struct {
	failureRate float64
	mu          sync.Mutex
	rng         *rand.Rand
}

func NewRandomAttempter(failureRate float64, seed int64) *RandomAttempter {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomAttempter{
		failureRate: failureRate,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomAttempter) Attempt(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	roll := r.rng.Float64()
	r.mu.Unlock()

	if roll < r.failureRate {
		return ErrSimulatedFailure
	}
	return nil
}

// Sequence replays outcomes in order and then keeps returning the last one.
// An empty sequence always succeeds.
type Sequence struct {
	mu       sync.Mutex
	outcomes []error
	calls    int
}

func NewSequence(outcomes ...error) *Sequence {
	return &Sequence{outcomes: outcomes}
}

func (s *Sequence) Attempt(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if len(s.outcomes) == 0 {
		return nil
	}
	i := s.calls - 1
	if i >= len(s.outcomes) {
		i = len(s.outcomes) - 1
	}
	return s.outcomes[i]
}

// Calls returns how many attempts were made
func (s *Sequence) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
