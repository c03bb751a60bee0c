package clock

import (
	"sync"
	"time"

	"github.com/fixora/archive/application/port/outbound"
)

type systemClock struct{}

// NewSystemClock returns a clock reading the local wall clock
func NewSystemClock() outbound.Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// FakeClock is a manually advanced clock
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a FakeClock starting at start
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
