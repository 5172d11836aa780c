// Package profile starts optional runtime profiling with
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the [Tag] build tag:
//
//	go build -tags pprof .
//
// Without it, [Modes] is empty and [Config.Start] never profiles. With it,
// a profile named after the mode (cpu.pprof, mem.pprof, and so on) is written
// to [Config.Path] when the returned [Stopper] is stopped:
//
//	stop := profile.New(profile.WithMode("cpu"), profile.WithPath(dir)).Start()
//	defer stop.Stop()
//
// Inspect the result with the pprof tool:
//
//	go tool pprof -http=:8080 ./yard cpu.pprof
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
