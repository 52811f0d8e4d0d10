package profile

import "slices"

// Stopper stops a running profiler.
type Stopper interface{ Stop() }

// Profiler describes one profiling session.
type Profiler struct {
	// Mode is one of [Modes]. An empty or unknown mode disables profiling.
	Mode string
	// Path is the output directory. Empty selects a temporary directory.
	Path string
	// Quiet suppresses the profiler's own log output.
	Quiet bool
}

// Start starts the profiler. The returned Stopper is never nil, and
// stopping a disabled profiler does nothing.
func (p Profiler) Start() Stopper {
	if !Supported(p.Mode) {
		return ignore{}
	}

	return start(p.Mode, p.Path, p.Quiet)
}

// Supported reports whether mode is one of [Modes].
func Supported(mode string) bool {
	return mode != "" && slices.Contains(Modes(), mode)
}

type ignore struct{}

func (ignore) Stop() {}
