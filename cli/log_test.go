package cli

import (
	"os"
	"testing"

	"github.com/ardnew/prestyle/log"
)

func TestLogConfig_Scan(t *testing.T) {
	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "separate values",
			args: []string{"--log-level", "debug", "--log-format", "json", "eval"},
			want: logConfig{Level: "debug", Format: "json"},
		},
		{
			name: "assigned values",
			args: []string{"--log-level=error", "--no-log-pretty", "--log-caller=true"},
			want: logConfig{Level: "error", Caller: true},
		},
		{
			name: "negated assignment",
			args: []string{"--no-log-caller=false", "--log-pretty"},
			want: logConfig{Caller: true, Pretty: true},
		},
		{
			name: "after terminator",
			args: []string{"--", "--log-level=debug"},
			want: logConfig{},
		},
		{
			name: "flag as value",
			args: []string{"--log-level", "--log-caller"},
			want: logConfig{Caller: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got logConfig

			got.scan(tt.args)

			if got != tt.want {
				t.Errorf("scan(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}
