package kernel

// Context is an opaque handle to a task's saved execution state, owned
// by whichever Engine created it. The scheduler never inspects it beyond
// handing it back to the Engine it came from — exactly how the portable
// core in spec.md §4.4/§9 treats the hand-crafted startup frame: its
// exact layout is a contract between start() and swtch(), not something
// the rest of the kernel cares about.
type Context any

// Engine is the swtch/cli/sti collaborator contract that spec.md §1 and
// §6 keep deliberately out of the portable core. On bare metal this is a
// few lines of assembly that save callee-saved registers to the old
// stack and restore them from the new one; hosted on the Go runtime,
// the reference implementation (archio.GoroutineEngine) instead parks
// one goroutine per task on a channel and hands a baton between them, so
// that exactly one of them is ever runnable — preserving the "single CPU,
// one task executes kernel code at a time" invariant of spec.md §5
// without needing real assembly.
type Engine interface {
	// Spawn allocates the execution context for a newly started task.
	// fn will run with arg the first time this context is switched to.
	// onExit is invoked, on the task's own context, with fn's return
	// value once fn returns or panics — the implicit __exit trampoline
	// spec.md §4.4 describes start() installing as the return address.
	//
	// stackWords is advisory (spec.md's kernel_stack sizing); reference
	// engines may ignore it entirely since Go manages its own stacks.
	Spawn(stackWords int, fn func(arg any) int, arg any, onExit func(retval int)) Context

	// Switch performs swtch(&old, next): transfers control to next,
	// and if old is non-nil, blocks the calling goroutine until old is
	// itself later passed as next to another Switch call (i.e. until
	// this task is rescheduled). A nil old models the boot case, where
	// there is no outgoing task to resume later.
	//
	// Switch must be called with no kernel lock held: by the time it is
	// called, every queue mutation for this dispatch has already
	// happened, the same way real interrupts are re-enabled only after
	// swtch restores the incoming task's saved flags register.
	Switch(old, next Context)

	// Destroy releases resources held for ctx. Called only once the
	// owning task has been observed Zombie and reaped; never call it on
	// a context that might still be switched to.
	Destroy(ctx Context)
}
