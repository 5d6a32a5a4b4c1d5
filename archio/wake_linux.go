//go:build linux

package archio

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// Waker is an eventfd-backed wakeup signal: Wake is safe to call from
// any goroutine (including a real OS signal handler in a future
// bare-metal build), and Wait blocks until at least one Wake has
// happened since the last Wait returned, coalescing any number of
// concurrent wakes into one.
type Waker struct {
	fd int
}

// NewWaker creates a Waker backed by a blocking, close-on-exec eventfd.
func NewWaker() (*Waker, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &Waker{fd: fd}, nil
}

// Wake signals the waker. Multiple wakes before the next Wait collapse
// into a single wakeup, since eventfd accumulates writes into one
// counter.
func (w *Waker) Wake() error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(w.fd, buf[:])
	return err
}

// Wait blocks until Wake has been called at least once since the last
// Wait, then drains the counter back to zero.
func (w *Waker) Wait() error {
	var buf [8]byte
	_, err := unix.Read(w.fd, buf[:])
	return err
}

// Close releases the underlying eventfd.
func (w *Waker) Close() error {
	return unix.Close(w.fd)
}
