package ik

const (
	// DefaultIterations is the maximum number of passes over the chain.
	DefaultIterations = 10
	// DefaultEpsilon is the smallest per-bone rotation, in radians, that is applied.
	DefaultEpsilon float32 = 0.001
	// DefaultThreshold is the effector-to-target distance at which solving stops.
	DefaultThreshold float32 = 0.01
)

// Result describes how a solve ended. Non-convergence is not an error; callers that need a success
// signal check Converged or Distance.
type Result struct {
	// Iterations is the number of full passes that were run.
	Iterations int
	// Distance is the final distance between the end effector and the target.
	Distance float32
	// Converged is true when Distance dropped below the solver threshold.
	Converged bool
}
