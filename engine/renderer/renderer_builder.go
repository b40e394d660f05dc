package renderer

import "github.com/rs/zerolog"

// sinkConfig collects the pre-creation settings shared by the sink constructors.
type sinkConfig struct {
	logger               zerolog.Logger
	label                string
	forceFallbackAdapter bool
	initialCapacity      int
}

func newSinkConfig(options []RendererBuilderOption) *sinkConfig {
	cfg := &sinkConfig{
		logger:          zerolog.Nop(),
		label:           "oxy-rig",
		initialCapacity: 64,
	}
	for _, opt := range options {
		opt(cfg)
	}
	return cfg
}

// RendererBuilderOption is a functional option applied to a sink during construction.
type RendererBuilderOption func(*sinkConfig)

// WithLogger sets the logger used by the sink.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option
func WithLogger(logger zerolog.Logger) RendererBuilderOption {
	return func(c *sinkConfig) {
		c.logger = logger
	}
}

// WithLabel sets the label prefix of GPU objects created by the sink.
//
// Parameters:
//   - label: the label prefix
//
// Returns:
//   - RendererBuilderOption: a function that applies the label option
func WithLabel(label string) RendererBuilderOption {
	return func(c *sinkConfig) {
		if label != "" {
			c.label = label
		}
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(c *sinkConfig) {
		c.forceFallbackAdapter = force
	}
}

// WithInitialCapacity sets the number of instances the GPU buffers are first sized for.
// Buffers grow by doubling when a frame needs more.
//
// Parameters:
//   - n: the initial instance capacity (minimum 1)
//
// Returns:
//   - RendererBuilderOption: a function that applies the capacity option
func WithInitialCapacity(n int) RendererBuilderOption {
	return func(c *sinkConfig) {
		c.initialCapacity = max(n, 1)
	}
}
