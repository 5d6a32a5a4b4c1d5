package kernel

// Default tunables, per spec.md §3/§4. These mirror the constants the
// original dominOS sources hard-coded (MIN_PRIO/MAX_PRIO, MAX_STACK_SIZE,
// the 8 reserved frame words chosen in spec.md §9 over the drafts'
// 6-word layout) as package defaults, overridable via Option.
const (
	DefaultMinPrio            = 1
	DefaultMaxPrio            = 256
	DefaultMaxStackSize       = 4096
	DefaultReservedFrameWords = 8
	DefaultMaxPID             = 4096
)

// schedulerOptions holds configuration resolved from a slice of Option.
type schedulerOptions struct {
	minPrio            int
	maxPrio            int
	maxStackSize       int
	reservedFrameWords int
	maxPID             int
	logger             *Logger
	engine             Engine
	clock              Clock
}

// Option configures a Scheduler at construction time, following the
// functional-options idiom used throughout this codebase's teacher
// lineage (see options.go in the original event loop core).
type Option interface {
	apply(*schedulerOptions)
}

type optionFunc func(*schedulerOptions)

func (f optionFunc) apply(o *schedulerOptions) { f(o) }

// WithPriorityRange overrides [MinPrio, MaxPrio]. Priorities outside this
// inclusive range are rejected by Start and Chprio with EINVAL.
func WithPriorityRange(min, max int) Option {
	return optionFunc(func(o *schedulerOptions) {
		o.minPrio = min
		o.maxPrio = max
	})
}

// WithMaxStackSize overrides the largest stack_size (in words) that
// Start will accept.
func WithMaxStackSize(words int) Option {
	return optionFunc(func(o *schedulerOptions) { o.maxStackSize = words })
}

// WithReservedFrameWords overrides the number of words reserved on every
// kernel stack for the saved-register frame, return address, and
// argument (spec.md §9: 8, not the drafts' 6).
func WithReservedFrameWords(words int) Option {
	return optionFunc(func(o *schedulerOptions) { o.reservedFrameWords = words })
}

// WithMaxPID overrides the exclusive upper bound of the pid space.
func WithMaxPID(max int) Option {
	return optionFunc(func(o *schedulerOptions) { o.maxPID = max })
}

// WithLogger sets the structured logger used for lifecycle diagnostics
// (task start/exit, kill, chprio, page faults). Defaults to the
// package-level logger set via SetLogger, or a no-op logger if none was
// configured.
func WithLogger(l *Logger) Option {
	return optionFunc(func(o *schedulerOptions) { o.logger = l })
}

// WithEngine sets the Engine (the swtch-equivalent collaborator). It is
// required: NewScheduler returns an error when no Engine is given.
func WithEngine(e Engine) Option {
	return optionFunc(func(o *schedulerOptions) { o.engine = e })
}

// WithClock sets the Clock (current_clock-equivalent collaborator). It is
// required: NewScheduler returns an error when no Clock is given.
func WithClock(c Clock) Option {
	return optionFunc(func(o *schedulerOptions) { o.clock = c })
}

func resolveOptions(opts []Option) *schedulerOptions {
	cfg := &schedulerOptions{
		minPrio:            DefaultMinPrio,
		maxPrio:            DefaultMaxPrio,
		maxStackSize:       DefaultMaxStackSize,
		reservedFrameWords: DefaultReservedFrameWords,
		maxPID:             DefaultMaxPID,
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		o.apply(cfg)
	}
	return cfg
}
