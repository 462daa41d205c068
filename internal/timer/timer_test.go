package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSlot_FiresAfterDelay(t *testing.T) {
	var mu sync.Mutex
	clock := NewManualClock(time.Unix(0, 0))
	slot := NewSlot(clock, &mu)

	fired := 0
	mu.Lock()
	slot.Schedule(300*time.Millisecond, func() { fired++ })
	assert.True(t, slot.Pending())
	mu.Unlock()

	clock.Advance(299 * time.Millisecond)
	assert.Zero(t, fired)

	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)

	mu.Lock()
	assert.False(t, slot.Pending())
	mu.Unlock()
}

func TestSlot_RescheduleSupersedes(t *testing.T) {
	var mu sync.Mutex
	clock := NewManualClock(time.Unix(0, 0))
	slot := NewSlot(clock, &mu)

	var got []string
	schedule := func(v string) {
		mu.Lock()
		defer mu.Unlock()
		slot.Schedule(300*time.Millisecond, func() { got = append(got, v) })
	}

	schedule("m")
	clock.Advance(200 * time.Millisecond)
	schedule("mi")
	clock.Advance(200 * time.Millisecond)
	schedule("min")
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(300 * time.Millisecond)
	assert.Equal(t, []string{"min"}, got)
}

func TestSlot_CancelAndClose(t *testing.T) {
	var mu sync.Mutex
	clock := NewManualClock(time.Unix(0, 0))
	slot := NewSlot(clock, &mu)

	fired := false
	mu.Lock()
	slot.Schedule(time.Second, func() { fired = true })
	assert.True(t, slot.Cancel())
	assert.False(t, slot.Cancel())
	mu.Unlock()

	clock.Advance(2 * time.Second)
	assert.False(t, fired)

	mu.Lock()
	slot.Schedule(time.Second, func() { fired = true })
	slot.Close()
	assert.False(t, slot.Schedule(time.Second, func() { fired = true }))
	mu.Unlock()

	clock.Advance(2 * time.Second)
	assert.False(t, fired)
	assert.Zero(t, clock.Pending())
}

// A callback that fired on the real clock but lost the race for the lock
// must not run once a newer task has been scheduled.
func TestSlot_StaleFireIsDropped(t *testing.T) {
	var mu sync.Mutex
	slot := NewSlot(RealClock{}, &mu)

	var got []string
	done := make(chan struct{})

	mu.Lock()
	slot.Schedule(time.Millisecond, func() { got = append(got, "old") })
	time.Sleep(20 * time.Millisecond) // old timer fires and blocks on mu
	slot.Schedule(time.Millisecond, func() {
		got = append(got, "new")
		close(done)
	})
	mu.Unlock()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("new task never ran")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"new"}, got)
}

func TestManualClock_OrderAndNow(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)

	var order []int
	clock.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	clock.AfterFunc(time.Second, func() { order = append(order, 1) })
	clock.AfterFunc(2*time.Second, func() {
		order = append(order, 2)
		clock.AfterFunc(500*time.Millisecond, func() { order = append(order, 25) })
	})

	clock.Advance(5 * time.Second)
	assert.Equal(t, []int{1, 2, 25, 3}, order)
	assert.Equal(t, start.Add(5*time.Second), clock.Now())
}
