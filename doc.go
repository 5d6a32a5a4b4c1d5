// Package kernel implements the core of a small preemptive multitasking
// kernel: task lifecycle, a priority scheduler, and the queues that back
// both of those.
//
// # Architecture
//
// The kernel is built around a [Scheduler], which owns five task queues
// (ready, sleeping, zombie, waiting-for-child, and one pair per message
// queue owned by the mqueue package) and exactly one notion of "the
// current task". Its internal dispatch method is the single dispatch
// point, reached via [Scheduler.Preempt] (gated: switches only if the
// ready head strictly outranks the caller), [Scheduler.Reschedule]
// (unconditional), or [Scheduler.Suspend]: it wakes due sleepers,
// decides whether a switch is warranted, reaps zombies, and hands
// control to the next task.
//
// Because this core runs hosted on the Go runtime rather than bare metal,
// there is no stack-frame-splicing context switch. Instead each [Task]
// runs on its own goroutine and a baton (see engine.go) guarantees that
// only the goroutine belonging to the current task is ever runnable at
// once — the Go translation of swtch(&old, new). The physical page
// allocator, the clock, and the baton primitive itself are the three
// collaborator contracts the core depends on without implementing; see
// the archio package for reference implementations.
//
// # Subsystems
//
// The paging and mqueue subpackages build on top of this package:
// paging never touches the scheduler (it only terminates a task via the
// lifecycle API on a fault), while mqueue blocks and wakes tasks through
// [Scheduler.Suspend] and [Scheduler.WakeTaskLocked].
//
// # Thread Safety
//
// All task and queue mutation happens under the Scheduler's single
// mutex, the logical equivalent of "interrupts disabled". The lifecycle
// calls that can switch tasks (Start, Exit, Waitpid, Kill, Chprio,
// WaitClock) must be made from the goroutine of the task currently
// running: a switch parks the calling goroutine as the outgoing task.
// Boot is called once from outside any task; GetPid and GetPrio only
// read state and may be called from any goroutine.
package kernel
