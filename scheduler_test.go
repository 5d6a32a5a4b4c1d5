package kernel_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kernel "github.com/xy2iii/dominos"
	"github.com/xy2iii/dominos/archio"
)

func newTestScheduler(t *testing.T) (*kernel.Scheduler, *archio.ManualClock) {
	t.Helper()
	clock := archio.NewManualClock()
	sched, err := kernel.NewScheduler(
		kernel.WithEngine(archio.NewGoroutineEngine()),
		kernel.WithClock(clock),
		kernel.WithPriorityRange(1, 16),
	)
	require.NoError(t, err)
	return sched, clock
}

func requireSoon(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

// TestScheduler_HigherPriorityTaskRunsFirst covers spec scenario S1:
// among ready tasks, the strictly higher-priority one always runs to
// completion first, regardless of start order. The boot task itself
// outranks both children so that starting them doesn't immediately
// hand off the CPU; only once boot blocks in Waitpid do the children
// actually run, in priority order.
func TestScheduler_HigherPriorityTaskRunsFirst(t *testing.T) {
	sched, _ := newTestScheduler(t)

	var mu sync.Mutex
	var order []string
	record := func(name string) {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
	}

	done := make(chan struct{})
	_, err := sched.Boot("boot", 10, 64, func(arg any) int {
		_, err := sched.Start("low", 1, 64, func(arg any) int {
			record("low")
			return 0
		}, nil)
		require.NoError(t, err)

		_, err = sched.Start("high", 5, 64, func(arg any) int {
			record("high")
			return 0
		}, nil)
		require.NoError(t, err)

		_, _, err = sched.Waitpid(kernel.WaitAny)
		require.NoError(t, err)
		_, _, err = sched.Waitpid(kernel.WaitAny)
		require.NoError(t, err)

		close(done)
		return 0
	}, nil)
	require.NoError(t, err)

	requireSoon(t, done, "boot to reap both children")
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 2)
	assert.Equal(t, []string{"high", "low"}, order)
}

// TestScheduler_WaitpidReapsExitCode covers spec scenario S2: a
// specific child's exit code is returned by Waitpid, and once
// collected, the parent has no further children to wait for.
func TestScheduler_WaitpidReapsExitCode(t *testing.T) {
	sched, _ := newTestScheduler(t)

	done := make(chan struct{})
	_, err := sched.Boot("boot", 1, 64, func(arg any) int {
		childPID, err := sched.Start("child", 1, 64, func(arg any) int {
			return 42
		}, nil)
		require.NoError(t, err)

		gotPID, retval, err := sched.Waitpid(childPID)
		require.NoError(t, err)
		assert.Equal(t, childPID, gotPID)
		assert.Equal(t, 42, retval)

		_, _, err = sched.Waitpid(kernel.WaitAny)
		assert.ErrorIs(t, err, kernel.ECHILD)

		close(done)
		return 0
	}, nil)
	require.NoError(t, err)
	requireSoon(t, done, "boot to reap its only child")
}

// TestScheduler_SleepWakesInClockOrder covers spec scenario S3: of two
// tasks sleeping for different durations, the one with the earlier
// wake time always wakes first, even when both become due in the same
// clock advance. No test code calls Preempt/Suspend directly — only
// the idle task's own loop (running on its own goroutine) may drive
// dispatch when nothing else is running.
func TestScheduler_SleepWakesInClockOrder(t *testing.T) {
	sched, clock := newTestScheduler(t)

	var mu sync.Mutex
	var order []string
	record := func(name string) {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
	}

	shortAsleep := make(chan struct{})
	longAsleep := make(chan struct{})
	allDone := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)

	_, err := sched.Boot("boot", 10, 64, func(arg any) int {
		_, err := sched.Start("long", 1, 64, func(arg any) int {
			defer wg.Done()
			close(longAsleep)
			require.NoError(t, sched.WaitClock(30))
			record("long")
			return 0
		}, nil)
		require.NoError(t, err)

		_, err = sched.Start("short", 1, 64, func(arg any) int {
			defer wg.Done()
			close(shortAsleep)
			require.NoError(t, sched.WaitClock(10))
			record("short")
			return 0
		}, nil)
		require.NoError(t, err)

		go func() {
			wg.Wait()
			close(allDone)
		}()
		return 0
	}, nil)
	require.NoError(t, err)

	requireSoon(t, longAsleep, "long to reach WaitClock")
	requireSoon(t, shortAsleep, "short to reach WaitClock")

	clock.Advance(30)

	requireSoon(t, allDone, "both sleepers to wake")
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"short", "long"}, order)
}

// TestScheduler_KillUnlinksFromAnyQueue covers Kill's generalized
// unlink behavior: a task sleeping (not ready, not waiting on a child)
// is still reapable, and the idle task can never be killed. sleeper
// outranks boot, so Start's gated preemption check hands it the CPU
// immediately, running it to its own first blocking call (WaitClock)
// before Start returns control to boot — no extra synchronization
// needed.
func TestScheduler_KillUnlinksFromAnyQueue(t *testing.T) {
	sched, _ := newTestScheduler(t)

	done := make(chan struct{})
	_, err := sched.Boot("boot", 1, 64, func(arg any) int {
		childPID, err := sched.Start("sleeper", 5, 64, func(arg any) int {
			_ = sched.WaitClock(1_000_000)
			return 99
		}, nil)
		require.NoError(t, err)

		require.NoError(t, sched.Kill(childPID))

		gotPID, retval, err := sched.Waitpid(childPID)
		require.NoError(t, err)
		assert.Equal(t, childPID, gotPID)
		assert.Equal(t, 0, retval)

		close(done)
		return 0
	}, nil)
	require.NoError(t, err)
	requireSoon(t, done, "boot to reap the killed sleeper")

	assert.ErrorIs(t, sched.Kill(kernel.IdlePID), kernel.EPERM)
}

// TestScheduler_WaitpidRejectsZeroAndBelowWaitAny covers the ECHILD edge
// cases for pid values that can never name a real child: 0 (idle) and
// anything below WaitAny.
func TestScheduler_WaitpidRejectsZeroAndBelowWaitAny(t *testing.T) {
	sched, _ := newTestScheduler(t)

	done := make(chan struct{})
	_, err := sched.Boot("boot", 1, 64, func(arg any) int {
		_, _, err := sched.Waitpid(0)
		assert.ErrorIs(t, err, kernel.ECHILD)

		_, _, err = sched.Waitpid(-2)
		assert.ErrorIs(t, err, kernel.ECHILD)

		close(done)
		return 0
	}, nil)
	require.NoError(t, err)
	requireSoon(t, done, "boot to observe Waitpid's ECHILD")
}

// TestScheduler_ChprioRejectsOutOfRange covers the EINVAL edge case for
// priorities outside the configured range.
func TestScheduler_ChprioRejectsOutOfRange(t *testing.T) {
	sched, _ := newTestScheduler(t)

	done := make(chan struct{})
	_, err := sched.Boot("boot", 1, 64, func(arg any) int {
		_, err := sched.Chprio(sched.GetPid(), 1000)
		assert.ErrorIs(t, err, kernel.EINVAL)
		close(done)
		return 0
	}, nil)
	require.NoError(t, err)
	requireSoon(t, done, "boot to observe Chprio's EINVAL")
}

// TestScheduler_ChprioRejectsUnknownPid covers Chprio's other EINVAL
// case (an unknown or already-reaped pid): no second error code the
// way Kill keeps ESRCH distinct for this.
func TestScheduler_ChprioRejectsUnknownPid(t *testing.T) {
	sched, _ := newTestScheduler(t)

	done := make(chan struct{})
	_, err := sched.Boot("boot", 1, 64, func(arg any) int {
		_, err := sched.Chprio(12345, 2)
		assert.ErrorIs(t, err, kernel.EINVAL)

		childPID, err := sched.Start("child", 1, 64, func(arg any) int { return 0 }, nil)
		require.NoError(t, err)
		_, _, err = sched.Waitpid(childPID)
		require.NoError(t, err)

		// childPID has been reaped and freed: Chprio must treat it the
		// same as any other unknown pid.
		_, err = sched.Chprio(childPID, 2)
		assert.ErrorIs(t, err, kernel.EINVAL)

		close(done)
		return 0
	}, nil)
	require.NoError(t, err)
	requireSoon(t, done, "boot to observe Chprio's EINVAL for an unknown pid")
}
