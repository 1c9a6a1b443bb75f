package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

func TestInit(t *testing.T) {
	tests := []struct {
		format    string
		unmarshal func([]byte, any) error
	}{
		{"yaml", yaml.Unmarshal},
		{"json", json.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "config")

			var cli struct {
				Root     string `default:"."`
				Path     []string
				MaxDepth int `default:"1024"`
				Caller   bool
				Empty    string
			}

			parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: base})
			if err != nil {
				t.Fatal(err)
			}

			ktx, err := parser.Parse([]string{"--path=a", "--path=b"})
			if err != nil {
				t.Fatal(err)
			}

			ctx := WithContext(t.Context(), ktx)
			ini := Init{Format: tt.format}

			if err := ini.Run(ctx); err != nil {
				t.Fatalf("Run() unexpected error: %v", err)
			}

			data, err := os.ReadFile(base + "." + tt.format)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]any
			if err := tt.unmarshal(data, &got); err != nil {
				t.Fatalf("generated file is invalid %s: %v\n%s", tt.format, err, data)
			}

			for key, want := range map[string]string{
				"root":      ".",
				"path":      "[a b]",
				"max-depth": "1024",
				"caller":    "false",
			} {
				if s := fmt.Sprint(got[key]); s != want {
					t.Errorf("%s = %s, want %s", key, s, want)
				}
			}

			for _, absent := range []string{"help", "empty"} {
				if _, ok := got[absent]; ok {
					t.Errorf("unexpected key %q", absent)
				}
			}

			if err := ini.Run(ctx); !errors.Is(err, ErrWriteConfig) || !errors.Is(err, ErrFileExists) {
				t.Errorf("second Run() error = %v, want %v", err, ErrFileExists)
			}

			ini.Force = true
			if err := ini.Run(ctx); err != nil {
				t.Errorf("forced Run() error = %v", err)
			}
		})
	}
}
