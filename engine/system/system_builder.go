package system

import (
	"github.com/Carmen-Shannon/anim-go/engine/profiler"
)

// SystemBuilderOption is a functional option for configuring a System.
// Use the With* functions to create options.
type SystemBuilderOption func(s *system)

// WithWorkers sets the number of worker goroutines used during the parallel
// controller update phase. Defaults to runtime.NumCPU()-1.
// Higher values may improve throughput with many entities or deep
// skeletons; lower values reduce scheduling overhead for small crowds.
//
// Parameters:
//   - n: the number of update workers (minimum 1)
//
// Returns:
//   - SystemBuilderOption: option function to apply
func WithWorkers(n int) SystemBuilderOption {
	return func(s *system) {
		if n < 1 {
			n = 1
		}
		s.updateWorkers = n
	}
}

// WithProfiler attaches a profiler that is ticked once per Update with the
// frame's update cost. No profiling happens without one.
//
// Parameters:
//   - p: the profiler to attach
//
// Returns:
//   - SystemBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) SystemBuilderOption {
	return func(s *system) {
		s.prof = p
	}
}
