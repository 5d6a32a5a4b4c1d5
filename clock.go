package kernel

// Clock is the current_clock collaborator: a monotonic tick counter the
// portable core reads to timestamp sleeps and compares against WakeTime,
// but never advances itself (spec.md keeps timer/interrupt dispatch
// firmly out of scope). archio provides a real-time reference
// implementation; tests typically supply a manually-advanced one.
type Clock interface {
	// Ticks returns the current tick count. Must be safe to call from
	// any goroutine: the scheduler reads it from whichever task's
	// goroutine is dispatching, while another goroutine may advance it.
	Ticks() uint64
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() uint64

func (f ClockFunc) Ticks() uint64 { return f() }
