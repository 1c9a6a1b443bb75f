// Package style serializes evaluated style records to CSS declaration
// blocks.
package style

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/ardnew/prestyle/lang"
	"github.com/ardnew/prestyle/log"
)

// Option configures serialization.
type Option func(*config)

type config struct {
	logger log.Logger
}

// WithLogger sets the logger that receives warnings about suspicious
// values and unsupported properties.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func makeConfig(opts ...Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

var propertyCache sync.Map

// HyphenateProperty converts a camel-cased property name to its CSS form,
// adding the leading hyphen of vendor prefixes: msTransform becomes
// -ms-transform.
func HyphenateProperty(name string) string {
	if v, ok := propertyCache.Load(name); ok {
		return v.(string)
	}

	var b strings.Builder

	b.Grow(len(name) + 4)

	for i := 0; i < len(name); i++ {
		if c := name[i]; 'A' <= c && c <= 'Z' {
			b.WriteByte('-')
		}

		b.WriteByte(name[i])
	}

	s := b.String()

	for _, prefix := range []string{"ms", "moz", "webkit"} {
		if strings.HasPrefix(s, prefix) {
			s = "-" + s

			break
		}
	}

	s = strings.ToLower(s)
	propertyCache.Store(name, s)

	return s
}

// Declaration renders one property:value pair. Only strings and numbers
// are supported; anything else yields "".
func Declaration(ctx context.Context, property string, v lang.Value, opts ...Option) string {
	return makeConfig(opts...).declaration(ctx, property, v)
}

func (c config) declaration(ctx context.Context, property string, v lang.Value) string {
	switch v := v.(type) {
	case lang.String:
		if v == "" {
			c.logger.WarnContext(ctx, "empty style value may cause unexpected behavior",
				slog.String("property", property))
		}

		return HyphenateProperty(property) + ":" + string(v)

	case lang.Number:
		f := float64(v)

		switch {
		case math.IsNaN(f):
			c.logger.WarnContext(ctx, "NaN style value may cause unexpected behavior",
				slog.String("property", property))
		case math.IsInf(f, 0):
			c.logger.WarnContext(ctx, "infinite style value may cause unexpected behavior",
				slog.String("property", property))
		}

		return HyphenateProperty(property) + ":" + lang.FormatNumber(f)
	}

	c.logger.DebugContext(ctx, "unsupported style value",
		slog.String("property", property),
		slog.String("type", lang.TypeOf(v)),
	)

	return ""
}

// DeclarationBlock renders the declarations of rec in property order,
// separated by semicolons. Array values emit one declaration per
// fallback. Unsupported values, nested records included, are left out.
func DeclarationBlock(ctx context.Context, rec *lang.Record, opts ...Option) string {
	c := makeConfig(opts...)

	var decls []string

	add := func(property string, v lang.Value) {
		if d := c.declaration(ctx, property, v); d != "" {
			decls = append(decls, d)
		}
	}

	rec.Each(func(property string, v lang.Value) bool {
		if fallbacks, ok := v.(*lang.Array); ok {
			for _, fb := range fallbacks.Elems {
				add(property, fb)
			}
		} else if _, nested := v.(*lang.Record); !nested {
			add(property, v)
		}

		return true
	})

	return strings.Join(decls, ";")
}

// Rule renders selector{block}.
func Rule(selector, block string) string {
	return selector + "{" + block + "}"
}

// Stylesheet renders rec as a rule for selector followed by the rules of
// its nested records. Keys starting with @ wrap the nested rules in an
// at-rule, keys containing & substitute the selector, keys starting with
// a colon or bracket attach to it, and any other key selects
// descendants.
func Stylesheet(ctx context.Context, selector string, rec *lang.Record, opts ...Option) []string {
	var rules []string

	if block := DeclarationBlock(ctx, rec, opts...); block != "" {
		rules = append(rules, Rule(selector, block))
	}

	rec.Each(func(key string, v lang.Value) bool {
		nested, ok := v.(*lang.Record)
		if !ok {
			return true
		}

		switch {
		case strings.HasPrefix(key, "@"):
			inner := Stylesheet(ctx, selector, nested, opts...)
			if len(inner) > 0 {
				rules = append(rules, Rule(key, strings.Join(inner, "")))
			}
		case strings.Contains(key, "&"):
			rules = append(rules, Stylesheet(ctx, strings.ReplaceAll(key, "&", selector), nested, opts...)...)
		case strings.HasPrefix(key, ":"), strings.HasPrefix(key, "["):
			rules = append(rules, Stylesheet(ctx, selector+key, nested, opts...)...)
		default:
			rules = append(rules, Stylesheet(ctx, selector+" "+key, nested, opts...)...)
		}

		return true
	})

	return rules
}
