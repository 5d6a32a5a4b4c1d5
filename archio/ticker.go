package archio

import "time"

// Ticker periodically invokes a callback from its own goroutine,
// standing in for a timer-interrupt source. The callback must be safe
// to call from an arbitrary goroutine — advancing a Clock, or signaling
// a Waker an idle loop is blocked on — never a Scheduler's
// Suspend/Preempt directly: those may only run on the goroutine of the
// task currently holding the baton.
type Ticker struct {
	t    *time.Ticker
	done chan struct{}
}

// NewTicker starts calling onTick every interval until Stop is called.
func NewTicker(interval time.Duration, onTick func()) *Ticker {
	tk := &Ticker{t: time.NewTicker(interval), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-tk.t.C:
				onTick()
			case <-tk.done:
				return
			}
		}
	}()
	return tk
}

// Stop halts the ticker goroutine. Safe to call once.
func (tk *Ticker) Stop() {
	tk.t.Stop()
	close(tk.done)
}
