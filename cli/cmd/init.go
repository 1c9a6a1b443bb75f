package cmd

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/prestyle/lang"
	"github.com/ardnew/prestyle/profile"
)

// Init generates a configuration file holding the current global flag
// values.
type Init struct {
	Force  bool   `help:"Overwrite existing configuration file" short:"f"`
	Format string `help:"Configuration file format"              default:"yaml" enum:"yaml,json"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) error {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	base, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	confPath := base + "." + i.Format

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}
	defer file.Close()

	if err := Output(i.Format).write(ctx, file, flagValues(ktx), defaultIndent); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	settingsFrom(ctx).Logger.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath))

	return nil
}

// flagValues returns the application flags and their current values in
// declaration order. Help, version and profiling flags are left out, as
// are empty values.
func flagValues(ktx *kong.Context) *lang.Record {
	ignore := []string{"help", "version", profile.Tag}
	rec := lang.NewRecord()

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		switch v := ktx.FlagValue(flag).(type) {
		case nil:
		case string:
			if v != "" {
				rec.Set(flag.Name, lang.String(v))
			}
		case []string:
			if len(v) > 0 {
				rec.Set(flag.Name, lang.FromNative(v))
			}
		default:
			rec.Set(flag.Name, lang.FromNative(v))
		}
	}

	return rec
}
