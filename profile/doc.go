// Package profile provides optional runtime profiling through
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof .
//	prestyle --pprof-mode cpu eval theme.ts
//
// Without the tag [Profiler.Start] always returns a no-op and [Modes] is
// empty. Profiles are written to the configured directory, named after
// the mode (cpu.pprof, mem.pprof), and are read with go tool pprof.
package profile

// Tag is the build tag required to enable pprof profiling. It also names
// the default output subdirectory.
const Tag = `pprof`
