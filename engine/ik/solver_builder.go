package ik

import "github.com/rs/zerolog"

// SolverBuilderOption is a functional option for configuring a Solver.
type SolverBuilderOption func(*solver)

// WithIterations is an option builder that sets the maximum number of passes per solve.
// Values below 1 are ignored.
//
// Parameters:
//   - n: the pass limit
//
// Returns:
//   - SolverBuilderOption: option function to apply
func WithIterations(n int) SolverBuilderOption {
	return func(s *solver) {
		if n > 0 {
			s.iterations = n
		}
	}
}

// WithEpsilon is an option builder that sets the minimum rotation angle, in radians, worth applying.
//
// Parameters:
//   - eps: the angle tolerance
//
// Returns:
//   - SolverBuilderOption: option function to apply
func WithEpsilon(eps float32) SolverBuilderOption {
	return func(s *solver) {
		if eps >= 0 {
			s.epsilon = eps
		}
	}
}

// WithThreshold is an option builder that sets the convergence distance.
//
// Parameters:
//   - threshold: the distance below which the effector counts as on target
//
// Returns:
//   - SolverBuilderOption: option function to apply
func WithThreshold(threshold float32) SolverBuilderOption {
	return func(s *solver) {
		if threshold >= 0 {
			s.threshold = threshold
		}
	}
}

// WithLogger is an option builder that sets the logger used for per-solve diagnostics.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - SolverBuilderOption: option function to apply
func WithLogger(logger zerolog.Logger) SolverBuilderOption {
	return func(s *solver) {
		s.logger = logger
	}
}
