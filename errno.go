package kernel

import "fmt"

// Errno is a kernel error code: a small negative integer, the way the
// original dominOS sources and POSIX both represent them. It implements
// the error interface directly, in the style of the standard library's
// syscall.Errno, so callers can use errors.Is against the package-level
// sentinels below or inspect the raw numeric value when they need to
// cross a boundary that still speaks in negative ints.
type Errno int

const (
	// EINVAL: argument out of range (priority, pid 0, capacity <= 0,
	// unknown queue id).
	EINVAL Errno = -22
	// ESRCH: pid not found, or already zombie where not permitted.
	ESRCH Errno = -3
	// ECHILD: no matching child to wait for.
	ECHILD Errno = -10
	// EPERM: attempted to kill the idle task.
	EPERM Errno = -1
	// ENOMEM: allocation failure.
	ENOMEM Errno = -12
	// EPIPE: message-queue waiter woken by pdelete.
	EPIPE Errno = -32
	// EINTR: message-queue waiter woken by preset.
	EINTR Errno = -4
)

var errnoNames = map[Errno]string{
	EINVAL: "EINVAL",
	ESRCH:  "ESRCH",
	ECHILD: "ECHILD",
	EPERM:  "EPERM",
	ENOMEM: "ENOMEM",
	EPIPE:  "EPIPE",
	EINTR:  "EINTR",
}

// Error implements the error interface.
func (e Errno) Error() string {
	if name, ok := errnoNames[e]; ok {
		return name
	}
	return fmt.Sprintf("errno(%d)", int(e))
}

// Is allows errors.Is(err, EINVAL) to match whether err is this exact
// Errno or wraps it, without requiring callers to import this package's
// constants by pointer identity.
func (e Errno) Is(target error) bool {
	other, ok := target.(Errno)
	return ok && other == e
}

// Int returns the canonical negative-integer value, for callers that
// need to cross a boundary still speaking in raw errno codes (as
// spec.md's External Interfaces table documents every call doing).
func (e Errno) Int() int {
	return int(e)
}
