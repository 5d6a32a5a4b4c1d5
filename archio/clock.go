package archio

import (
	"sync/atomic"
	"time"
)

// RealClock implements kernel.Clock against the host's monotonic clock,
// one tick per millisecond since construction. It never drives the
// scheduler itself (spec.md keeps timer dispatch out of the portable
// core): due sleepers are woken on the next dispatch, which the idle
// task's loop performs continuously. A Ticker callback must not call
// Scheduler.Preempt; see Ticker.
type RealClock struct {
	start time.Time
}

func NewRealClock() *RealClock {
	return &RealClock{start: time.Now()}
}

func (c *RealClock) Ticks() uint64 {
	return uint64(time.Since(c.start) / time.Millisecond)
}

// ManualClock implements kernel.Clock with a counter only ever advanced
// by explicit calls to Advance, for deterministic tests of sleep/wake
// ordering.
type ManualClock struct {
	ticks atomic.Uint64
}

func NewManualClock() *ManualClock {
	return &ManualClock{}
}

func (c *ManualClock) Ticks() uint64 {
	return c.ticks.Load()
}

// Advance increases the clock by n ticks and returns the new value.
func (c *ManualClock) Advance(n uint64) uint64 {
	return c.ticks.Add(n)
}
