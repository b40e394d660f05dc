package animator

import "github.com/rs/zerolog"

// PlayerBuilderOption is a functional option for configuring a Player.
type PlayerBuilderOption func(*player)

// WithSpeed sets the initial playback speed multiplier.
//
// Parameters:
//   - speed: the speed multiplier (1.0 = normal, 0.5 = half speed)
//
// Returns:
//   - PlayerBuilderOption: option function to apply
func WithSpeed(speed float32) PlayerBuilderOption {
	return func(p *player) {
		p.speed = speed
	}
}

// WithLogger sets the logger used for playback state transitions.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - PlayerBuilderOption: option function to apply
func WithLogger(logger zerolog.Logger) PlayerBuilderOption {
	return func(p *player) {
		p.logger = logger
	}
}
