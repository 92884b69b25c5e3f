package stream

import (
	"sync"
	"time"
)

// NowFunc returns the current wall-clock time in milliseconds since the
// Unix epoch. Key generation and consumer idle arithmetic read it once per
// operation; it must be non-decreasing in practice.
type NowFunc func() int64

// SystemNow is the default clock.
func SystemNow() int64 { return time.Now().UnixMilli() }

// ManualClock is a deterministic, manually advanced clock for tests.
type ManualClock struct {
	mu sync.Mutex
	ms int64
}

// NewManualClock returns a clock pinned at startMs.
func NewManualClock(startMs int64) *ManualClock {
	return &ManualClock{ms: startMs}
}

// Now returns the current simulated time in milliseconds.
func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ms
}

// Advance moves the clock forward. Non-positive deltas are ignored.
func (c *ManualClock) Advance(ms int64) {
	if ms <= 0 {
		return
	}
	c.mu.Lock()
	c.ms += ms
	c.mu.Unlock()
}
