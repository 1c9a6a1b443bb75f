package cmd

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/prestyle/lang"
)

func TestCSS(t *testing.T) {
	tests := []struct {
		name    string
		css     CSS
		want    string
		wantErr error
	}{
		{
			name: "declaration block",
			css:  CSS{File: "button.ts", Name: "button"},
			want: "background-color:red;padding:4;padding:4px",
		},
		{
			name: "stylesheet",
			css:  CSS{File: "button.ts", Name: "button", Selector: ".btn"},
			want: ".btn{background-color:red;padding:4;padding:4px}\n.btn:hover{color:blue}",
		},
		{
			name:    "not a record",
			css:     CSS{File: "button.ts", Name: "label"},
			wantErr: lang.ErrNotRecord,
		},
		{
			name:    "runtime",
			css:     CSS{File: "theme.ts", Name: "width"},
			wantErr: ErrRuntimeRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, root, stdout, _ := testEnv(t)
			tt.css.File = filepath.Join(root, tt.css.File)

			err := tt.css.Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Run() unexpected error: %v", err)
			}

			if got := strings.TrimSpace(stdout.String()); got != tt.want {
				t.Errorf("stdout = %q, want %q", got, tt.want)
			}
		})
	}
}
