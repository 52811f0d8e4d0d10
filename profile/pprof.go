//go:build pprof

package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

// Modes returns the supported profiling modes in sorted order.
var Modes = sync.OnceValue(
	func() []string {
		return slices.Sorted(maps.Keys(mode))
	},
)

var mode = map[string]func(*profile.Profile){
	"allocs":    profile.MemProfileAllocs,
	"block":     profile.BlockProfile,
	"clock":     profile.ClockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"heap":      profile.MemProfileHeap,
	"mem":       profile.MemProfile,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// option appends profile settings for one aspect of a [Profiler].
type option func([]func(*profile.Profile)) []func(*profile.Profile)

func withMode(m string) option {
	return func(o []func(*profile.Profile)) []func(*profile.Profile) {
		if fn, ok := mode[m]; ok {
			o = append(o, fn)
		}

		return o
	}
}

func withPath(p string) option {
	return func(o []func(*profile.Profile)) []func(*profile.Profile) {
		if p != "" {
			o = append(o, profile.ProfilePath(p))
		}

		return o
	}
}

func withQuiet(v bool) option {
	return func(o []func(*profile.Profile)) []func(*profile.Profile) {
		if v {
			o = append(o, profile.Quiet, profile.NoShutdownHook)
		}

		return o
	}
}

func start(m, path string, quiet bool) Stopper {
	var settings []func(*profile.Profile)

	for _, opt := range []option{withMode(m), withPath(path), withQuiet(quiet)} {
		settings = opt(settings)
	}

	return profile.Start(settings...)
}
