package loader

import "github.com/rs/zerolog"

// LoaderBuilderOption is a functional option for configuring a Loader.
type LoaderBuilderOption func(*loader)

// WithLogger sets the logger used by the loader and its backend.
//
// Parameters:
//   - logger: the zerolog logger to use
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger to a loader
func WithLogger(logger zerolog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		l.logger = logger
	}
}

// WithSkin selects which skin of a file becomes the skeleton. Negative values are ignored.
//
// Parameters:
//   - index: the skin index (default 0)
//
// Returns:
//   - LoaderBuilderOption: a function that applies the skin index to a loader
func WithSkin(index int) LoaderBuilderOption {
	return func(l *loader) {
		if index >= 0 {
			l.skinIndex = index
		}
	}
}

// WithLoop sets the Loop flag of imported clips (default true).
func WithLoop(loop bool) LoaderBuilderOption {
	return func(l *loader) {
		l.loop = loop
	}
}
