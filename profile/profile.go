package profile

// Profiler configures one profiling session.
type Profiler struct {
	Mode  string // one of [Modes]
	Path  string // output directory; empty uses the working directory
	Quiet bool
}

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling. The returned Stopper is a no-op when Mode is
// empty or unknown, or when profiling support is not compiled in.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

// Enabled reports whether profiling support is compiled in.
func Enabled() bool { return enabled }

type ignore struct{}

func (ignore) Stop() {}
