package cli

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLogConfig_Scan(t *testing.T) {
	quietLog(t)

	defaults := logConfig{Level: "info", Format: "text", TimeLayout: "RFC3339", Pretty: true}

	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "none",
			args: []string{"render", "-o", "out"},
			want: defaults,
		},
		{
			name: "separate values",
			args: []string{"--log-level", "debug", "page", "--log-format", "json"},
			want: logConfig{Level: "debug", Format: "json", TimeLayout: "RFC3339", Pretty: true},
		},
		{
			name: "assigned values",
			args: []string{"--log-level=warn", "--log-time-layout=none"},
			want: logConfig{Level: "warn", Format: "text", TimeLayout: "none", Pretty: true},
		},
		{
			name: "booleans",
			args: []string{"--log-caller", "--no-log-pretty"},
			want: logConfig{Level: "info", Format: "text", TimeLayout: "RFC3339", Caller: true},
		},
		{
			name: "assigned booleans",
			args: []string{"--log-caller=false", "--no-log-pretty=false", "--log-pretty=bogus"},
			want: defaults,
		},
		{
			name: "missing value",
			args: []string{"--log-level", "--log-caller"},
			want: logConfig{Level: "", Format: "text", TimeLayout: "RFC3339", Caller: true, Pretty: true},
		},
		{
			name: "terminator",
			args: []string{"--", "--log-level", "error"},
			want: defaults,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := defaults
			got.scan(tt.args)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("scan() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
