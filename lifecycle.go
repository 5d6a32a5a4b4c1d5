package kernel

import "runtime"

// WaitAny is the Waitpid pid value meaning "any child", matching the
// original sources' convention of a negative pid in the waitpid family.
const WaitAny = -1

// Boot creates the first task a Scheduler runs, standing in for
// kernel_start() handing off to the first real process. It must be
// called exactly once, before any other lifecycle method, and performs
// the scheduler's initial dispatch itself (there is no "current" task
// yet to preempt).
func (s *Scheduler) Boot(name string, prio, stackWords int, fn func(arg any) int, arg any) (int, error) {
	pid, err := s.startWithParent(nil, name, prio, stackWords, fn, arg)
	if err != nil {
		return 0, err
	}
	s.Preempt()
	return pid, nil
}

// Start creates a new task as a child of the calling task, at the given
// priority and with the given kernel-stack budget (in words). fn's
// return value becomes the exit code collected by Waitpid, exactly as
// if the task had called Exit with it.
func (s *Scheduler) Start(name string, prio, stackWords int, fn func(arg any) int, arg any) (int, error) {
	return s.startWithParent(s.Current(), name, prio, stackWords, fn, arg)
}

func (s *Scheduler) startWithParent(parent *Task, name string, prio, stackWords int, fn func(arg any) int, arg any) (int, error) {
	if prio < s.opts.minPrio || prio > s.opts.maxPrio {
		return 0, EINVAL
	}
	if stackWords <= s.opts.reservedFrameWords || stackWords > s.opts.maxStackSize {
		return 0, EINVAL
	}
	if fn == nil {
		return 0, EINVAL
	}
	if r := []rune(name); len(r) > MaxNameLen {
		name = string(r[:MaxNameLen])
	}

	s.mu.Lock()
	pid, ok := s.pids.Alloc()
	if !ok {
		s.mu.Unlock()
		return 0, ENOMEM
	}
	t := &Task{
		PID:        pid,
		Name:       name,
		Priority:   prio,
		State:      StateReady,
		Parent:     parent,
		children:   newChildrenQueue(),
		stackWords: stackWords,
	}
	t.ctx = s.engine.Spawn(stackWords, fn, arg, s.Exit)
	s.tasks[pid] = t
	if parent != nil {
		parent.children.PushBack(t)
	}
	s.ready.PushOrdered(t, readyLess)
	logTaskEvent(s.logger, "task started", t)
	s.mu.Unlock()

	if parent != nil {
		s.Preempt()
	}
	return pid, nil
}

// Exit terminates the calling task with the given return value and
// never returns: the task becomes a zombie, its parent (if blocked in
// Waitpid for it) is woken, and control is switched away permanently.
// It is also installed as every task's Engine onExit callback, so a
// task whose body simply returns exits implicitly with that value.
// Called before Boot, when there is no current task, it returns without
// effect; called from the idle task, it panics.
func (s *Scheduler) Exit(retval int) {
	s.mu.Lock()
	t := s.current
	if t == nil {
		s.mu.Unlock()
		return
	}
	if t.IsIdle() {
		s.mu.Unlock()
		panic("kernel: idle task called Exit")
	}
	t.State = StateZombie
	t.RetVal = retval
	s.zombies.PushBack(t)
	s.wakeWaitingParentLocked(t)
	logTaskEvent(s.logger, "task exited", t)
	s.mu.Unlock()

	s.Suspend()
	// A zombie is never switched back to, so Suspend returns only when
	// the Engine releases the destroyed context; end this goroutine
	// rather than return into the task's body.
	runtime.Goexit()
}

func (s *Scheduler) wakeWaitingParentLocked(t *Task) {
	p := t.Parent
	if p == nil || p.State != StateWaitingChild {
		return
	}
	if p.waitTarget != WaitAny && p.waitTarget != t.PID {
		return
	}
	s.wakeTaskLocked(p)
}

// Waitpid blocks the calling task until a child matching pid (a
// specific pid, or WaitAny) has exited, then returns that child's pid
// and exit code. It returns ECHILD immediately if no such child exists
// at all (alive or zombie), and also for pid == 0 or pid < WaitAny,
// neither of which name a real child (idle is never anyone's child).
func (s *Scheduler) Waitpid(pid int) (int, int, error) {
	if pid == IdlePID || pid < WaitAny {
		return 0, 0, ECHILD
	}
	s.mu.Lock()
	parent := s.current
	if parent == nil {
		s.mu.Unlock()
		return 0, 0, EINVAL
	}
	for {
		if zpid, zretval, ok := s.collectZombieChildLocked(parent, pid); ok {
			s.mu.Unlock()
			return zpid, zretval, nil
		}
		if !s.hasAnyChildLocked(parent, pid) {
			s.mu.Unlock()
			return 0, 0, ECHILD
		}
		parent.State = StateWaitingChild
		if pid < 0 {
			parent.waitTarget = WaitAny
		} else {
			parent.waitTarget = pid
		}
		s.waitingChildren.PushBack(parent)
		s.mu.Unlock()

		s.Suspend()

		s.mu.Lock()
	}
}

func (s *Scheduler) collectZombieChildLocked(parent *Task, pid int) (int, int, bool) {
	var found *Task
	s.zombies.Iterate(func(t *Task) bool {
		if t.Parent == parent && (pid < 0 || t.PID == pid) {
			found = t
			return false
		}
		return true
	})
	if found == nil {
		return 0, 0, false
	}
	retPID, retval := found.PID, found.RetVal
	parent.children.Remove(found)
	s.freeZombieLocked(found)
	return retPID, retval, true
}

func (s *Scheduler) hasAnyChildLocked(parent *Task, pid int) bool {
	if pid < 0 {
		return parent.children.Len() > 0
	}
	found := false
	parent.children.Iterate(func(c *Task) bool {
		if c.PID == pid {
			found = true
			return false
		}
		return true
	})
	return found
}

// Kill forcibly terminates pid with exit code 0, regardless of what it
// was blocked on: ready, sleeping, waiting on a message queue, or
// waiting for a child. It is the one operation generalized beyond what
// exit()/psend/preceive/waitpid do on their own, since any of those
// wait queues share the same link field a task can be unlinked from
// without knowing which queue it's actually in. A task that kills
// itself does not return from Kill.
func (s *Scheduler) Kill(pid int) error {
	if pid == IdlePID {
		return EPERM
	}
	s.mu.Lock()
	t := s.lookupLocked(pid)
	if t == nil || t.State == StateZombie {
		s.mu.Unlock()
		return ESRCH
	}
	self := t == s.current
	if t.inQueue != nil {
		t.inQueue.Remove(t)
	}
	t.State = StateZombie
	t.RetVal = 0
	s.zombies.PushBack(t)
	s.wakeWaitingParentLocked(t)
	logTaskEvent(s.logger, "task killed", t)
	s.mu.Unlock()

	if self {
		s.Suspend()
		runtime.Goexit()
	} else {
		s.Preempt()
	}
	return nil
}

// Chprio changes pid's priority and returns its previous value, or
// EINVAL if newPrio is out of range, or pid names no live task (no
// such pid, or a zombie) — a single combined error code, matching the
// original's single -1 for "bad priority OR not found OR zombie".
// Lowering or raising the priority of a ready task repositions it
// within the ready queue immediately; either direction unconditionally
// reschedules, exactly like the original's unconditional schedule().
func (s *Scheduler) Chprio(pid, newPrio int) (int, error) {
	if newPrio < s.opts.minPrio || newPrio > s.opts.maxPrio {
		return 0, EINVAL
	}
	s.mu.Lock()
	t := s.lookupLocked(pid)
	if t == nil || t.State == StateZombie {
		s.mu.Unlock()
		return 0, EINVAL
	}
	oldPrio := t.Priority
	t.Priority = newPrio
	if t.State == StateReady && t.inQueue != nil {
		t.inQueue.Remove(t)
		s.ready.PushOrdered(t, readyLess)
	}
	logTaskEvent(s.logger, "priority changed", t)
	s.mu.Unlock()

	s.Reschedule()
	return oldPrio, nil
}

// GetPid returns the calling task's pid, or -1 before Boot.
func (s *Scheduler) GetPid() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return -1
	}
	return s.current.PID
}

// GetPrio returns pid's current priority.
func (s *Scheduler) GetPrio(pid int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.lookupLocked(pid)
	if t == nil {
		return 0, ESRCH
	}
	return t.Priority, nil
}

// WaitClock blocks the calling task until the clock has advanced by at
// least ticks from now.
func (s *Scheduler) WaitClock(ticks uint64) error {
	s.mu.Lock()
	t := s.current
	if t == nil {
		s.mu.Unlock()
		return EINVAL
	}
	t.State = StateSleeping
	t.WakeTime = s.clock.Ticks() + ticks
	s.sleeping.PushOrdered(t, sleepLess)
	s.mu.Unlock()

	s.Suspend()
	return nil
}
