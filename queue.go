package kernel

// TaskQueue is an intrusive doubly linked list of tasks, the Go analogue
// of the original sources' queue_t lists: no separate node allocation,
// the links live directly on the Task. A Task belongs to at most one
// TaskQueue of a given kind at a time (state queues and the children
// list are different kinds, see Task.inQueue / Task.inChildren).
//
// CALLER MUST HOLD THE OWNING SCHEDULER'S LOCK for every method below:
// TaskQueue itself does no synchronization, exactly like the chunked
// ingress queues this type is modeled on.
type TaskQueue struct {
	kind       queueKind
	head, tail *Task
	len        int
}

type queueKind int

const (
	queueKindState queueKind = iota
	queueKindChildren
)

func (q *TaskQueue) prev(t *Task) *Task {
	if q.kind == queueKindChildren {
		return t.siblingPrev
	}
	return t.queuePrev
}

func (q *TaskQueue) next(t *Task) *Task {
	if q.kind == queueKindChildren {
		return t.siblingNext
	}
	return t.queueNext
}

func (q *TaskQueue) setPrev(t, v *Task) {
	if q.kind == queueKindChildren {
		t.siblingPrev = v
	} else {
		t.queuePrev = v
	}
}

func (q *TaskQueue) setNext(t, v *Task) {
	if q.kind == queueKindChildren {
		t.siblingNext = v
	} else {
		t.queueNext = v
	}
}

func (q *TaskQueue) setOwner(t *Task) {
	if q.kind == queueKindChildren {
		t.inChildren = q
	} else {
		t.inQueue = q
	}
}

func (q *TaskQueue) clearOwner(t *Task) {
	if q.kind == queueKindChildren {
		if t.inChildren == q {
			t.inChildren = nil
		}
	} else {
		if t.inQueue == q {
			t.inQueue = nil
		}
	}
}

// Len returns the number of tasks currently linked into q.
func (q *TaskQueue) Len() int { return q.len }

// PushBack appends t to the tail of q.
func (q *TaskQueue) PushBack(t *Task) {
	q.setPrev(t, q.tail)
	q.setNext(t, nil)
	if q.tail != nil {
		q.setNext(q.tail, t)
	} else {
		q.head = t
	}
	q.tail = t
	q.len++
	q.setOwner(t)
}

// PushOrdered inserts t immediately before the first existing element e
// for which before(t, e) is true, or at the tail if none qualifies.
// Used for the ready queue (ordered by non-increasing priority) and the
// sleep queue (ordered by non-decreasing WakeTime); ties preserve
// insertion order (FIFO) because before is evaluated with strict
// ordering only.
func (q *TaskQueue) PushOrdered(t *Task, before func(a, b *Task) bool) {
	for n := q.head; n != nil; n = q.next(n) {
		if before(t, n) {
			q.insertBefore(t, n)
			return
		}
	}
	q.PushBack(t)
}

func (q *TaskQueue) insertBefore(t, mark *Task) {
	p := q.prev(mark)
	q.setPrev(t, p)
	q.setNext(t, mark)
	q.setPrev(mark, t)
	if p != nil {
		q.setNext(p, t)
	} else {
		q.head = t
	}
	q.len++
	q.setOwner(t)
}

// Remove unlinks t from q. t must currently belong to q (PushBack or
// PushOrdered must have been called on this exact queue and t must not
// have been removed since); Remove is a no-op if that invariant was
// already observably broken, to make it safe to call defensively from
// Kill/Exit paths that don't always know which queue a task landed in.
func (q *TaskQueue) Remove(t *Task) {
	owner := t.inQueue
	if q.kind == queueKindChildren {
		owner = t.inChildren
	}
	if owner != q {
		return
	}
	p, n := q.prev(t), q.next(t)
	if p != nil {
		q.setNext(p, n)
	} else {
		q.head = n
	}
	if n != nil {
		q.setPrev(n, p)
	} else {
		q.tail = p
	}
	q.setPrev(t, nil)
	q.setNext(t, nil)
	q.clearOwner(t)
	q.len--
}

// PopFront removes and returns the task at the head of q, if any.
func (q *TaskQueue) PopFront() (*Task, bool) {
	t := q.head
	if t == nil {
		return nil, false
	}
	q.Remove(t)
	return t, true
}

// Front returns the task at the head of q without removing it.
func (q *TaskQueue) Front() (*Task, bool) {
	if q.head == nil {
		return nil, false
	}
	return q.head, true
}

// Iterate calls fn for every task in q, head to tail, stopping early if
// fn returns false. Safe against fn removing the current task from q
// (the next pointer is captured before fn runs).
func (q *TaskQueue) Iterate(fn func(*Task) bool) {
	for n := q.head; n != nil; {
		next := q.next(n)
		if !fn(n) {
			return
		}
		n = next
	}
}

func newChildrenQueue() TaskQueue {
	return TaskQueue{kind: queueKindChildren}
}
