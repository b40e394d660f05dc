package engine

import (
	"github.com/Carmen-Shannon/oxy-rig/engine/profiler"
	"github.com/Carmen-Shannon/oxy-rig/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rig/engine/scene"
	"github.com/rs/zerolog"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the rate at which Run steps the engine, in steps per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target steps per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickInterval(fps)
	}
}

// WithScene registers a scene at the given z-index key during engine construction.
// Frames are produced in ascending key order.
//
// Parameters:
//   - key: the z-index determining frame order (lower first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithWorkers sets the number of workers that tick scenes in parallel.
// Values < 1 are ignored.
//
// Parameters:
//   - n: the worker count (default NumCPU-1, minimum 1)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWorkers(n int) EngineBuilderOption {
	return func(e *engine) {
		if n >= 1 {
			e.workers = n
		}
	}
}

// WithLogger sets the logger used by the engine and its profiler.
//
// Parameters:
//   - logger: the zerolog logger to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger zerolog.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = logger
	}
}

// WithProfiler replaces the default profiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithFrameSink sets the sink that receives each step's frames.
//
// Parameters:
//   - sink: the FrameSink to submit to
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameSink(sink renderer.FrameSink) EngineBuilderOption {
	return func(e *engine) {
		e.sink = sink
	}
}

// WithTickCallback registers the per-step callback during construction.
func WithTickCallback(callback func(deltaTime float32)) EngineBuilderOption {
	return func(e *engine) {
		e.tickCallback = callback
	}
}
