// package ik contains a cyclic coordinate descent solver that rotates a bone chain toward a target point.
package ik

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
)

// minLength guards normalization of near-zero vectors.
const minLength = 1e-6

// Solver rotates the live pose of a bone chain so that its last bone approaches a target.
type Solver interface {
	// Solve runs up to the configured number of CCD passes over the chain.
	//
	// Each pass works on one snapshot of the skeleton. Bones are visited from the second-to-last back to
	// the first; each is rotated about the axis that swings the end effector onto the line toward the
	// target. The effector position is carried forward inside the pass, and the new local rotations are
	// written to the skeleton's live pose when the pass ends. Bones that are missing, or that are not
	// ancestors of the effector, are skipped.
	//
	// Parameters:
	//   - skel: the skeleton whose live pose is modified
	//   - chain: bone IDs ordered root to tip; the last entry is the end effector
	//   - target: the target position in skeleton space
	//
	// Returns:
	//   - Result: passes run, the final effector distance and whether it converged
	Solve(skel skeleton.Skeleton, chain []string, target mgl32.Vec3) Result

	// Iterations returns the pass limit.
	Iterations() int

	// Epsilon returns the minimum applied rotation in radians.
	Epsilon() float32

	// Threshold returns the convergence distance.
	Threshold() float32
}

// solver implements the Solver interface.
type solver struct {
	logger     zerolog.Logger
	iterations int
	epsilon    float32
	threshold  float32
}

var _ Solver = &solver{}

// NewSolver creates a new Solver with the default limits and applies the provided options.
//
// Parameters:
//   - options: functional options for solver configuration
//
// Returns:
//   - Solver: the newly created solver
func NewSolver(options ...SolverBuilderOption) Solver {
	s := &solver{
		logger:     zerolog.Nop(),
		iterations: DefaultIterations,
		epsilon:    DefaultEpsilon,
		threshold:  DefaultThreshold,
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

func (s *solver) Iterations() int {
	return s.iterations
}

func (s *solver) Epsilon() float32 {
	return s.epsilon
}

func (s *solver) Threshold() float32 {
	return s.threshold
}

func (s *solver) Solve(skel skeleton.Skeleton, chain []string, target mgl32.Vec3) Result {
	if len(chain) == 0 {
		return Result{}
	}
	effector := chain[len(chain)-1]

	distance, ok := s.distance(skel, effector, target)
	if !ok {
		s.logger.Warn().Str("effector", effector).Msg("ik effector not found")
		return Result{}
	}
	res := Result{Distance: distance, Converged: distance < s.threshold}
	if len(chain) < 2 || res.Converged {
		return res
	}

	for res.Iterations < s.iterations {
		res.Iterations++
		s.pass(skel, chain, target)

		res.Distance, _ = s.distance(skel, effector, target)
		if res.Distance < s.threshold {
			res.Converged = true
			break
		}
	}

	s.logger.Debug().
		Str("effector", effector).
		Int("iterations", res.Iterations).
		Float32("distance", res.Distance).
		Bool("converged", res.Converged).
		Msg("ik solve finished")
	return res
}

// pass runs one sweep from the second-to-last bone back to the root and commits the result.
func (s *solver) pass(skel skeleton.Skeleton, chain []string, target mgl32.Vec3) {
	pose := skel.Snapshot()
	effector := chain[len(chain)-1]

	effWorld, ok := pose.World(effector)
	if !ok {
		return
	}
	eff := effWorld.Position

	updates := make(map[string]skeleton.BonePose, len(chain)-1)
	for i := len(chain) - 2; i >= 0; i-- {
		id := chain[i]
		if !pose.IsAncestor(id, effector) {
			continue
		}
		bone, _ := pose.Bone(id)
		world, _ := pose.World(id)

		toEff := eff.Sub(world.Position)
		toTarget := target.Sub(world.Position)
		if toEff.Len() < minLength || toTarget.Len() < minLength {
			continue
		}
		toEff, toTarget = toEff.Normalize(), toTarget.Normalize()

		angle := math32.Acos(mgl32.Clamp(toEff.Dot(toTarget), -1, 1))
		if angle <= s.epsilon {
			continue
		}
		axis := toEff.Cross(toTarget)
		if axis.Len() < minLength {
			continue
		}
		axis = axis.Normalize()

		localAxis := world.Rotation.Inverse().Rotate(axis)
		local := common.EulerToQuat(bone.Rotation).Mul(mgl32.QuatRotate(angle, localAxis))
		updates[id] = skeleton.BonePose{
			Position: bone.Position,
			Rotation: common.QuatToEuler(local.Normalize()),
		}

		// Ancestors visited later in the pass are unaffected by this rotation, so their snapshot world
		// transforms stay valid; only the effector has to be moved.
		eff = world.Position.Add(mgl32.QuatRotate(angle, axis).Rotate(eff.Sub(world.Position)))
	}

	if len(updates) > 0 {
		skel.ApplyPose(updates)
	}
}

func (s *solver) distance(skel skeleton.Skeleton, effector string, target mgl32.Vec3) (float32, bool) {
	w, ok := skel.WorldTransform(effector)
	if !ok {
		return 0, false
	}
	return w.Position.Sub(target).Len(), true
}
