package profile

import (
	"slices"
	"testing"
)

func TestModes_Sorted(t *testing.T) {
	modes := Modes()
	if !slices.IsSorted(modes) {
		t.Errorf("Modes() = %v, want sorted", modes)
	}
}

func TestProfiler_Disabled(t *testing.T) {
	tests := []struct {
		name string
		p    Profiler
	}{
		{"empty", Profiler{}},
		{"unknown", Profiler{Mode: "bogus", Path: t.TempDir()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stop := tt.p.Start()
			if _, ok := stop.(ignore); !ok {
				t.Errorf("Start() = %T, want no-op", stop)
			}

			stop.Stop()
		})
	}
}

func TestSupported(t *testing.T) {
	if Supported("") {
		t.Error(`Supported("") = true`)
	}

	for _, m := range Modes() {
		if !Supported(m) {
			t.Errorf("Supported(%q) = false", m)
		}
	}
}
