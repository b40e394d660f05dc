package scene

import (
	"github.com/Carmen-Shannon/oxy-rig/engine/animator"
	"github.com/Carmen-Shannon/oxy-rig/engine/binding"
	"github.com/Carmen-Shannon/oxy-rig/engine/ik"
	"github.com/rs/zerolog"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithID sets the scene identifier instead of a generated UUID.
// An empty ID is ignored.
//
// Parameters:
//   - id: the scene ID
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithID(id string) SceneBuilderOption {
	return func(s *scene) {
		if id != "" {
			s.id = id
		}
	}
}

// WithActive sets whether the scene is ticked by the engine.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithLogger sets the scene logger. The player and solver created by NewScene inherit it.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger zerolog.Logger) SceneBuilderOption {
	return func(s *scene) {
		s.logger = logger
	}
}

// WithBindings sets the initial bindings as they are, without regenerating or normalizing them.
//
// Parameters:
//   - bindings: the bindings to use
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBindings(bindings ...binding.Binding) SceneBuilderOption {
	return func(s *scene) {
		s.bindings = append(s.bindings, bindings...)
	}
}

// WithClips registers clips by name. Nil clips and clips that fail validation are skipped.
//
// Parameters:
//   - clips: the clips to register
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithClips(clips ...*animator.Clip) SceneBuilderOption {
	return func(s *scene) {
		for _, c := range clips {
			if c == nil || c.Validate() != nil {
				continue
			}
			s.clips[c.Name] = c
		}
	}
}

// WithPlayer replaces the default animation player.
//
// Parameters:
//   - p: the player to use
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPlayer(p animator.Player) SceneBuilderOption {
	return func(s *scene) {
		s.player = p
	}
}

// WithSolver replaces the default IK solver.
//
// Parameters:
//   - solver: the solver to use
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSolver(solver ik.Solver) SceneBuilderOption {
	return func(s *scene) {
		s.solver = solver
	}
}
