package testutil

import (
	"sync"
	"time"
)

// Clock is a deterministic wall clock for tests. Each call to Now returns the
// current reading and then advances it by the step.
//
// Thread-safety: all methods are safe for concurrent use.
type Clock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	step  time.Duration
}

// NewClock creates a clock reading start that advances by step per call.
// A zero step makes a frozen clock.
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{start: start, now: start, step: step}
}

// Now returns the current reading and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Reset returns the clock to its start time.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}

// FixedNow is the creation time used by golden tests: MJD 60000.5.
var FixedNow = time.Date(2023, time.February, 25, 12, 0, 0, 0, time.UTC)
