// Package mqueue implements bounded in-kernel message queues with
// blocking rendezvous: psend/preceive hand a message directly from a
// waiting sender to a waiting receiver when possible, and fall back to
// a fixed-capacity ring buffer otherwise. It builds entirely on the
// kernel package's exported Suspend/WakeTaskLocked/Lock/Unlock surface rather
// than its own locking, so a Kill of a task blocked in psend or
// preceive unlinks it exactly the same way a Kill of a sleeping task
// does.
package mqueue
