package paging

import kernel "github.com/xy2iii/dominos"

// HandleFault implements this system's page-fault policy: a fault
// terminates only the faulting task, with exit code 0, exactly as if
// it had called exit(0) itself. There is no segfault signal, no
// recovery, and no effect on any other task.
func HandleFault(sched *kernel.Scheduler, addr uintptr, reason string) {
	t := sched.Current()
	sched.LogFault(t, reason)
	sched.Exit(0)
}
