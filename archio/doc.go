// Package archio provides reference implementations of the collaborator
// contracts the kernel package depends on but does not implement: the
// swtch-equivalent [kernel.Engine] (GoroutineEngine), a [kernel.Clock]
// (RealClock, ManualClock), and a page-frame allocator for the paging
// package. None of this is required to use kernel; it exists so tests
// have something concrete to construct a [kernel.Scheduler] with.
package archio
