package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestResolveYAML(t *testing.T) {
	const doc = `
root: styles
path: [vendor, 'lib']
max_depth: 64
log:
  level: debug
  pretty: false
pprof-mode: cpu
`

	resolver, err := resolveYAML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("resolveYAML failed: %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"root", "styles"},
		{"max-depth", "64"},
		{"log-level", "debug"},
		{"log-pretty", false},
		{"pprof-mode", "cpu"},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flag := &kong.Flag{Value: &kong.Value{Name: tt.flag}}

			got, err := resolver.Resolve(nil, nil, flag)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}

			if got != tt.want {
				t.Errorf("Resolve(%s) = %#v, want %#v", tt.flag, got, tt.want)
			}
		})
	}

	got, _ := resolver.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "path"}})

	list, ok := got.([]any)
	if !ok || len(list) != 2 || list[0] != "vendor" || list[1] != "lib" {
		t.Errorf("Resolve(path) = %#v", got)
	}
}

func TestResolveYAML_Empty(t *testing.T) {
	resolver, err := resolveYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("resolveYAML failed: %v", err)
	}

	if err := resolver.Validate(nil); err != nil {
		t.Errorf("Validate failed: %v", err)
	}

	got, err := resolver.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "root"}})
	if got != nil || err != nil {
		t.Errorf("Resolve = %v, %v; want nil", got, err)
	}
}

func TestResolveYAML_Invalid(t *testing.T) {
	if _, err := resolveYAML(strings.NewReader("root: [unterminated")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

type errorReader struct{}

var errRead = errors.New("read failed")

func (errorReader) Read([]byte) (int, error) { return 0, errRead }

func TestResolveYAML_ReadError(t *testing.T) {
	if _, err := resolveYAML(errorReader{}); err == nil {
		t.Error("expected read error")
	}
}

func TestScalar(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{int(3), "3"},
		{int64(-3), "-3"},
		{uint64(7), "7"},
		{1.5, "1.5"},
		{true, true},
		{"x", "x"},
		{nil, nil},
	}

	for _, tt := range tests {
		if got := scalar(tt.in); got != tt.want {
			t.Errorf("scalar(%#v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
