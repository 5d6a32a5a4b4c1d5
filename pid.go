package kernel

// IdlePID is the fixed pid of the idle task, created once per Scheduler
// and never reused, never reaped, never returned by the allocator
// below.
const IdlePID = 0

// pidAllocator hands out pids from [1, max) on a bitset, the Go
// analogue of the original sources' pid bitmap: O(1) release, and an
// allocation scan from pid 1 upward, so the lowest free pid is always
// the one handed out.
type pidAllocator struct {
	max  int
	used []bool
}

func newPIDAllocator(max int) *pidAllocator {
	if max < 2 {
		max = 2
	}
	a := &pidAllocator{max: max, used: make([]bool, max)}
	a.used[IdlePID] = true
	return a
}

// Alloc returns the lowest available pid in [1, max), or (0, false) if
// the pid space is exhausted.
func (a *pidAllocator) Alloc() (int, bool) {
	for pid := IdlePID + 1; pid < a.max; pid++ {
		if !a.used[pid] {
			a.used[pid] = true
			return pid, true
		}
	}
	return 0, false
}

// Free releases pid, making it available for reuse. Must only be called
// once a task's exit status has been reaped (Waitpid collected it, or
// its parent died and it was inherited by nobody), matching the
// original sources' rule that a pid is only recycled after the zombie
// is fully collected.
func (a *pidAllocator) Free(pid int) {
	if pid > IdlePID && pid < a.max {
		a.used[pid] = false
	}
}
