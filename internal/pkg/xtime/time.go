package xtime

import (
	"sync"
	"time"
)

func UTCNow() time.Time {
	return time.Now().UTC()
}

// Clock abstracts the current time so services can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return UTCNow()
}

// SystemClock returns the wall clock in UTC.
func SystemClock() Clock {
	return systemClock{}
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)

	return c.now
}

func (c *ManualClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}

// OrSystem returns clock, or the system clock when clock is nil.
func OrSystem(clock Clock) Clock {
	if clock == nil {
		return SystemClock()
	}

	return clock
}
