package timer

import (
	"sync"
	"time"
)

// Clock schedules callbacks. Tests swap in a ManualClock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

// Stopper cancels a scheduled callback
type Stopper interface {
	Stop() bool
}

// RealClock is backed by the time package
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Slot holds at most one pending task. Scheduling a new task cancels the
// previous one. The slot shares its owner's lock: Schedule, Cancel, Pending
// and Close must be called with the lock held, and the task runs with the lock
// held. A task whose timer fires after it was superseded or cancelled is
// dropped.
type Slot struct {
	clock   Clock
	lock    sync.Locker
	seq     uint64
	pending Stopper
	closed  bool
}

func NewSlot(clock Clock, lock sync.Locker) *Slot {
	if clock == nil {
		clock = RealClock{}
	}
	return &Slot{clock: clock, lock: lock}
}

// Schedule runs task after d unless superseded. It returns false once the slot is closed.
func (s *Slot) Schedule(d time.Duration, task func()) bool {
	if s.closed {
		return false
	}
	s.stop()

	s.seq++
	seq := s.seq
	s.pending = s.clock.AfterFunc(d, func() {
		s.lock.Lock()
		defer s.lock.Unlock()

		if s.closed || s.seq != seq {
			return
		}
		s.pending = nil
		task()
	})
	return true
}

// Cancel drops the pending task, reporting whether there was one
func (s *Slot) Cancel() bool {
	return s.stop()
}

func (s *Slot) Pending() bool {
	return s.pending != nil
}

// Close cancels the pending task and refuses further scheduling
func (s *Slot) Close() {
	s.stop()
	s.closed = true
}

func (s *Slot) stop() bool {
	if s.pending == nil {
		return false
	}
	s.pending.Stop()
	s.pending = nil
	// invalidate a callback that already fired and is waiting for the lock
	s.seq++
	return true
}
