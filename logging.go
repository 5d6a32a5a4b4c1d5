package kernel

import (
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured logger used for lifecycle diagnostics: task
// start/exit, kill, chprio and page faults. It wraps a
// logiface.Logger[*stumpy.Event] rather than rolling a bespoke logging
// interface, the way this codebase's lineage always reaches for logiface
// over an ad-hoc logger type.
type Logger = logiface.Logger[*stumpy.Event]

var (
	globalLogger struct {
		sync.RWMutex
		logger *Logger
	}

	// faultRate throttles the page-fault diagnostic lines a
	// misbehaving task can produce: without it, a task that faults
	// repeatedly (or is repeatedly restarted under the same pid) could
	// flood the log faster than anything reads it.
	faultRate = catrate.NewLimiter(map[time.Duration]int{
		time.Second: 20,
		time.Minute: 200,
	})
)

// SetLogger installs the package-level default Logger, used by any
// Scheduler constructed without an explicit WithLogger option.
func SetLogger(l *Logger) {
	globalLogger.Lock()
	defer globalLogger.Unlock()
	globalLogger.logger = l
}

// defaultLogger returns the package-level Logger, or a disabled one if
// none has been configured via SetLogger.
func defaultLogger() *Logger {
	globalLogger.RLock()
	defer globalLogger.RUnlock()
	if globalLogger.logger != nil {
		return globalLogger.logger
	}
	l := stumpy.L.New(stumpy.L.WithLevel(logiface.LevelDisabled))
	return l
}

// logTaskEvent emits a Notice-level record naming a task and its pid,
// used for start/exit/kill/chprio.
func logTaskEvent(l *Logger, msg string, t *Task) {
	if l == nil || t == nil {
		return
	}
	l.Notice().
		Int(`pid`, t.PID).
		Str(`name`, t.Name).
		Int(`prio`, t.Priority).
		Log(msg)
}

// logFault emits a rate-limited Err-level record for a page fault,
// naming the faulting task and the reason it was terminated. A panic
// recovered inside task code is not reported through it.
func logFault(l *Logger, t *Task, reason string) {
	if l == nil || t == nil {
		return
	}
	if _, ok := faultRate.Allow(t.PID); !ok {
		return
	}
	l.Err().
		Int(`pid`, t.PID).
		Str(`name`, t.Name).
		Str(`reason`, reason).
		Log(`task terminated by fault`)
}
