package style

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/ardnew/prestyle/lang"
	"github.com/ardnew/prestyle/log"
)

func record(kv ...any) *lang.Record {
	r := lang.NewRecord()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1].(lang.Value))
	}

	return r
}

func capture(buf *bytes.Buffer) Option {
	return WithLogger(log.Make(buf,
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"),
		log.WithLevel(log.LevelDebug)))
}

func TestHyphenateProperty(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"color", "color"},
		{"backgroundColor", "background-color"},
		{"borderTopLeftRadius", "border-top-left-radius"},
		{"msTransform", "-ms-transform"},
		{"MozAppearance", "-moz-appearance"},
		{"WebkitLineClamp", "-webkit-line-clamp"},
		{"webkitTransition", "-webkit-transition"},
		{"--custom-var", "--custom-var"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := HyphenateProperty(tt.in); got != tt.want {
				t.Errorf("HyphenateProperty(%q) = %q, want %q", tt.in, got, tt.want)
			}

			// memoized
			if got := HyphenateProperty(tt.in); got != tt.want {
				t.Errorf("second call = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeclaration(t *testing.T) {
	tests := []struct {
		name     string
		property string
		value    lang.Value
		want     string
		logged   string
	}{
		{"string", "fontFamily", lang.String("serif"), "font-family:serif", ""},
		{"integer", "zIndex", lang.Number(10), "z-index:10", ""},
		{"fraction", "opacity", lang.Number(0.5), "opacity:0.5", ""},
		{"empty string", "content", lang.String(""), "content:", "empty style value"},
		{"nan", "width", lang.Number(math.NaN()), "width:NaN", "NaN style value"},
		{"infinity", "height", lang.Number(math.Inf(1)), "height:Infinity", "infinite style value"},
		{"boolean", "display", lang.Bool(true), "", "unsupported style value"},
		{"null", "margin", lang.Null{}, "", "unsupported style value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			got := Declaration(t.Context(), tt.property, tt.value, capture(&buf))
			if got != tt.want {
				t.Errorf("Declaration = %q, want %q", got, tt.want)
			}

			if tt.logged == "" && buf.Len() > 0 {
				t.Errorf("unexpected log output %q", buf.String())
			}

			if !strings.Contains(buf.String(), tt.logged) {
				t.Errorf("log output %q missing %q", buf.String(), tt.logged)
			}
		})
	}
}

func TestDeclaration_WithoutLogger(t *testing.T) {
	if got := Declaration(t.Context(), "width", lang.Number(math.NaN())); got != "width:NaN" {
		t.Errorf("got %q", got)
	}
}

func TestDeclarationBlock(t *testing.T) {
	rec := record(
		"display", lang.String("flex"),
		"padding", lang.NewArray(lang.Number(4), lang.String("4px"), lang.Bool(false)),
		"nested", record("color", lang.String("red")),
		"onClick", lang.Undefined{},
		"marginTop", lang.Number(-2),
	)

	want := "display:flex;padding:4;padding:4px;margin-top:-2"
	if got := DeclarationBlock(t.Context(), rec); got != want {
		t.Errorf("DeclarationBlock = %q, want %q", got, want)
	}

	if got := DeclarationBlock(t.Context(), lang.NewRecord()); got != "" {
		t.Errorf("empty record gave %q", got)
	}
}

func TestStylesheet(t *testing.T) {
	rec := record(
		"color", lang.String("red"),
		":hover", record("color", lang.String("blue")),
		"@media (min-width: 600px)", record("fontSize", lang.Number(12)),
		"& > a", record("margin", lang.Number(0)),
		"span", record("padding", lang.NewArray(lang.Number(1), lang.String("2px"))),
		"empty", record("nothing", lang.Null{}),
	)

	want := []string{
		".btn{color:red}",
		".btn:hover{color:blue}",
		"@media (min-width: 600px){.btn{font-size:12}}",
		".btn > a{margin:0}",
		".btn span{padding:1;padding:2px}",
	}

	got := Stylesheet(t.Context(), ".btn", rec)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Stylesheet =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}
