package cli

import (
	"path/filepath"
	"slices"
	"testing"
)

func TestSearchPath(t *testing.T) {
	got := searchPath([]string{"vendor", "lib"}, "")
	if want := []string{"vendor", "lib"}; !slices.Equal(got, want) {
		t.Errorf("searchPath = %q, want %q", got, want)
	}

	if got := searchPath(nil, ""); len(got) != 0 {
		t.Errorf("searchPath(nil) = %q, want none", got)
	}
}

func TestConfigPath(t *testing.T) {
	got := configPath(baseConfig)
	if filepath.Base(got) != baseConfig || filepath.Dir(got) == "." {
		t.Errorf("configPath = %q", got)
	}
}
