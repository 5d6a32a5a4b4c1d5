package archio

import "github.com/xy2iii/dominos"

// baton is the Context a GoroutineEngine hands back from Spawn: one
// goroutine, parked on resume until switched to, and on destroy until
// released.
type baton struct {
	resume  chan struct{}
	destroy chan struct{}
}

// GoroutineEngine implements kernel.Engine by running each task on its
// own goroutine and handing a single-slot baton between them, so that
// exactly one task's goroutine is ever unblocked at a time — the Go
// translation of swtch(&old, new) this package exists to provide.
type GoroutineEngine struct{}

// NewGoroutineEngine constructs a GoroutineEngine. It holds no state of
// its own; every task's state lives in its own baton.
func NewGoroutineEngine() *GoroutineEngine {
	return &GoroutineEngine{}
}

func (e *GoroutineEngine) Spawn(stackWords int, fn func(arg any) int, arg any, onExit func(retval int)) kernel.Context {
	b := &baton{
		resume:  make(chan struct{}, 1),
		destroy: make(chan struct{}),
	}
	go func() {
		select {
		case <-b.resume:
		case <-b.destroy:
			return
		}
		retval := e.runRecovered(fn, arg)
		onExit(retval)
	}()
	return b
}

// runRecovered invokes fn, treating a panic inside task code as if the
// task had called exit(0): the kernel's fault-handling story (spec.md
// §4.5) is "terminate the faulting task", not "crash the kernel".
func (e *GoroutineEngine) runRecovered(fn func(arg any) int, arg any) (retval int) {
	defer func() {
		if recover() != nil {
			retval = 0
		}
	}()
	return fn(arg)
}

func (e *GoroutineEngine) Switch(old, next kernel.Context) {
	if next != nil {
		next.(*baton).resume <- struct{}{}
	}
	if old == nil {
		return
	}
	ob := old.(*baton)
	select {
	case <-ob.resume:
	case <-ob.destroy:
	}
}

func (e *GoroutineEngine) Destroy(ctx kernel.Context) {
	close(ctx.(*baton).destroy)
}

var _ kernel.Engine = (*GoroutineEngine)(nil)
