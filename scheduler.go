package kernel

import (
	"fmt"
	"runtime"
	"sync"
)

// Scheduler owns every task and the five queues (ready, sleeping,
// zombie, waiting-for-child, and whichever send/recv queues the mqueue
// package threads through Suspend/WakeTask) that back task lifecycle.
// [Scheduler.dispatch] is the single place queue mutation and the
// decision to switch happen together, under mu — the logical
// equivalent of running with interrupts disabled.
type Scheduler struct {
	mu sync.Mutex

	opts   *schedulerOptions
	pids   *pidAllocator
	tasks  map[int]*Task
	engine Engine
	clock  Clock
	logger *Logger

	ready           TaskQueue
	sleeping        TaskQueue
	zombies         TaskQueue
	waitingChildren TaskQueue

	current *Task
	idle    *Task
}

func readyLess(a, b *Task) bool { return a.Priority > b.Priority }
func sleepLess(a, b *Task) bool { return a.WakeTime < b.WakeTime }

// NewScheduler constructs a Scheduler and its idle task. WithEngine and
// WithClock are required: this package supplies the portable dispatch
// logic, not the swtch or clock-tick primitives spec.md keeps out of
// scope, so there is no built-in default to fall back to.
func NewScheduler(opts ...Option) (*Scheduler, error) {
	cfg := resolveOptions(opts)
	if cfg.engine == nil {
		return nil, fmt.Errorf("kernel: NewScheduler requires WithEngine")
	}
	if cfg.clock == nil {
		return nil, fmt.Errorf("kernel: NewScheduler requires WithClock")
	}
	if cfg.logger == nil {
		cfg.logger = defaultLogger()
	}

	s := &Scheduler{
		opts:            cfg,
		pids:            newPIDAllocator(cfg.maxPID),
		tasks:           make(map[int]*Task),
		engine:          cfg.engine,
		clock:           cfg.clock,
		logger:          cfg.logger,
		waitingChildren: TaskQueue{},
	}

	idle := &Task{
		PID:      IdlePID,
		Name:     "idle",
		Priority: cfg.minPrio,
		State:    StateReady,
		children: newChildrenQueue(),
	}
	idle.ctx = s.engine.Spawn(cfg.maxStackSize, s.idleBody, nil, s.Exit)
	s.idle = idle
	s.tasks[IdlePID] = idle
	s.ready.PushOrdered(idle, readyLess)

	return s, nil
}

// idleBody never returns: it repeatedly offers every other ready task a
// chance to run, the hosted analogue of the timer ISR's unconditional
// schedule() firing while "sti; hlt; cli" spins waiting for the next
// interrupt — so it reschedules unconditionally, not gated the way
// Preempt is.
func (s *Scheduler) idleBody(arg any) int {
	for {
		s.Reschedule()
		runtime.Gosched()
	}
}

// Preempt is the gated reschedule check: it only switches away from a
// Running caller if the ready queue's head now strictly outranks it
// (set_task_ready's trailing "if (task_ptr->priority > current()->priority)
// schedule();"). Call it after an action that may have made a
// higher-priority task ready — task creation, a wakeup — so a lower or
// equal-priority ready task never steals the CPU from a task that
// merely ties it.
func (s *Scheduler) Preempt() {
	s.dispatch(true, true)
}

// Reschedule forces a dispatch regardless of relative priority, the Go
// analogue of calling schedule() directly: a priority change, a kill,
// a message-queue rendezvous handoff, and the idle loop's own
// stand-in for the timer tick all reschedule this way, so that a tie
// (or even a lower priority) among ready tasks still gets the CPU on
// the next such call.
func (s *Scheduler) Reschedule() {
	s.dispatch(true, false)
}

// Suspend removes the calling task from CPU without requeuing it to
// ready: the caller must already have set its own State and linked
// itself into the appropriate wait queue (sleeping, a message queue's
// send/recv list, or waitingChildren) before calling this. It returns
// once another dispatch later makes this task current again.
func (s *Scheduler) Suspend() {
	s.dispatch(false, false)
}

// dispatch implements the schedule() contract: wake due sleepers,
// decide the next task (requeuing the outgoing one first if
// requested and, when gated, only if the ready head actually
// outranks it), reap orphaned zombies, then hand off via the Engine.
func (s *Scheduler) dispatch(requeueOld, gated bool) {
	s.mu.Lock()
	s.wakeDueSleepersLocked()

	old := s.current
	if requeueOld && old != nil && old.State == StateRunning {
		if gated {
			if head, ok := s.ready.Front(); !ok || head.Priority <= old.Priority {
				s.reapOrphansLocked()
				s.mu.Unlock()
				return
			}
		}
		old.State = StateReady
		s.ready.PushOrdered(old, readyLess)
	}

	next := s.pickNextLocked()
	s.current = next
	if next != nil {
		next.State = StateRunning
	}

	s.reapOrphansLocked()
	s.mu.Unlock()

	if old == next {
		return
	}
	var oldCtx Context
	if old != nil {
		oldCtx = old.ctx
	}
	s.engine.Switch(oldCtx, next.ctx)
}

// pickNextLocked pops the head of the ready queue. The idle task is
// always present in ready (it is never removed by any other path), so
// this only returns nil before idle has been constructed.
func (s *Scheduler) pickNextLocked() *Task {
	t, ok := s.ready.PopFront()
	if !ok {
		return s.idle
	}
	return t
}

// wakeDueSleepersLocked moves every task whose WakeTime has arrived
// from the sleep queue to the ready queue, in wake order.
func (s *Scheduler) wakeDueSleepersLocked() {
	now := s.clock.Ticks()
	for {
		t, ok := s.sleeping.Front()
		if !ok || t.WakeTime > now {
			return
		}
		s.sleeping.Remove(t)
		t.State = StateReady
		s.ready.PushOrdered(t, readyLess)
	}
}

// reapOrphansLocked frees pids and destroys contexts for zombies nobody
// will ever Waitpid for: tasks with no parent (those started by Boot)
// and tasks whose parent has already exited (is itself a zombie,
// reaped or not). A zombie with a live parent stays in s.zombies until
// Waitpid collects it, per spec.
func (s *Scheduler) reapOrphansLocked() {
	var orphans []*Task
	s.zombies.Iterate(func(t *Task) bool {
		if t.Parent == nil || t.Parent.State == StateZombie {
			orphans = append(orphans, t)
		}
		return true
	})
	for _, t := range orphans {
		s.freeZombieLocked(t)
	}
}

// freeZombieLocked removes t from the zombie queue, frees its pid, and
// destroys its execution context. t must already be Zombie.
func (s *Scheduler) freeZombieLocked(t *Task) {
	s.zombies.Remove(t)
	delete(s.tasks, t.PID)
	s.pids.Free(t.PID)
	s.engine.Destroy(t.ctx)
}

// lookupLocked returns the task for pid, or nil if no such task exists.
func (s *Scheduler) lookupLocked(pid int) *Task {
	return s.tasks[pid]
}

// Current returns the task currently holding the baton.
func (s *Scheduler) Current() *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// WakeTask makes a blocked task ready again, unlinking it from whatever
// wait queue it currently sits in. It takes the scheduler's lock itself;
// the mqueue package, which wakes senders and receivers (and every
// waiter on pdelete/preset) while already holding the lock, uses
// WakeTaskLocked instead.
func (s *Scheduler) WakeTask(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wakeTaskLocked(t)
}

// WakeTaskLocked is the counterpart to WakeTask for callers that already
// hold the scheduler's lock via Lock/Unlock (mqueue's blocking
// operations, which must atomically pop a waiter and wake it within the
// same critical section they inspect queue state in).
func (s *Scheduler) WakeTaskLocked(t *Task) {
	s.wakeTaskLocked(t)
}

func (s *Scheduler) wakeTaskLocked(t *Task) {
	if t.inQueue != nil {
		t.inQueue.Remove(t)
	}
	t.State = StateReady
	s.ready.PushOrdered(t, readyLess)
}

// LogFault records a rate-limited diagnostic for t having been
// terminated by a fault (paging.HandleFault calls it for a page fault)
// for reason. It performs no state change itself — callers
// still call Exit or Kill to actually terminate the task.
func (s *Scheduler) LogFault(t *Task, reason string) {
	logFault(s.logger, t, reason)
}

// Lock and Unlock extend the scheduler's critical section to
// collaborating subsystems (mqueue) that need to atomically link the
// current task into a wait queue they own and update its State before
// calling Suspend.
func (s *Scheduler) Lock()   { s.mu.Lock() }
func (s *Scheduler) Unlock() { s.mu.Unlock() }
