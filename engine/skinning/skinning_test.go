package skinning

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rig/engine/binding"
	"github.com/Carmen-Shannon/oxy-rig/engine/mesh"
	"github.com/Carmen-Shannon/oxy-rig/engine/model"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoBones() *skeleton.Pose {
	return skeleton.NewPose([]skeleton.Bone{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B", Position: mgl32.Vec3{10, 0, 0}},
	})
}

func blendFixture() ([]mesh.Part, []binding.Binding) {
	parts := []mesh.Part{{ID: "p", Name: "Plate", Transform: mesh.Transform{
		Position: mgl32.Vec3{5, 5, 5},
		Scale:    mgl32.Vec3{2, 2, 2},
	}}}
	bindings := []binding.Binding{
		{ID: "1", PartID: "p", BoneID: "a", Weight: 0.6},
		{ID: "2", PartID: "p", BoneID: "b", Weight: 0.4},
	}
	return parts, bindings
}

func TestRobotBlendIsWeightedAverage(t *testing.T) {
	parts, bindings := blendFixture()
	got := Evaluate(model.Robot, twoBones(), parts, bindings)

	require.Contains(t, got, "p")
	assert.Less(t, got["p"].Position.Sub(mgl32.Vec3{4, 0, 0}).Len(), float32(1e-5), "got %v", got["p"].Position)
	assert.Less(t, got["p"].Rotation.Sub(mgl32.QuatIdent()).Len(), float32(1e-5))
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, got["p"].Scale)
}

func TestHumanoidSnapsToLastBone(t *testing.T) {
	parts, bindings := blendFixture()
	got := Evaluate(model.Humanoid, twoBones(), parts, bindings)

	assert.Equal(t, mgl32.Vec3{10, 0, 0}, got["p"].Position)

	// Reversed processing order snaps to the other bone.
	got = Evaluate(model.Humanoid, twoBones(), parts, []binding.Binding{bindings[1], bindings[0]})
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, got["p"].Position)
}

func TestRobotOffsetFollowsBoneRotation(t *testing.T) {
	pose := skeleton.NewPose([]skeleton.Bone{
		{ID: "arm", Position: mgl32.Vec3{1, 0, 0}, Rotation: mgl32.Vec3{0, 0, mgl32.DegToRad(90)}},
	})
	parts := []mesh.Part{{ID: "p", Transform: mesh.DefaultTransform()}}
	bindings := []binding.Binding{{PartID: "p", BoneID: "arm", Weight: 1, Offset: mgl32.Vec3{2, 0, 0}}}

	got := Evaluate(model.Robot, pose, parts, bindings)
	assert.Less(t, got["p"].Position.Sub(mgl32.Vec3{1, 2, 0}).Len(), float32(1e-5), "got %v", got["p"].Position)

	want := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	assert.True(t, got["p"].Rotation.OrientationEqualThreshold(want, 1e-5))
}

func TestRotationAccumulatesBySlerp(t *testing.T) {
	pose := skeleton.NewPose([]skeleton.Bone{
		{ID: "a"},
		{ID: "b", Rotation: mgl32.Vec3{0, 0, 1.0}},
	})
	parts := []mesh.Part{{ID: "p", Transform: mesh.DefaultTransform()}}
	bindings := []binding.Binding{
		{PartID: "p", BoneID: "a", Weight: 0.5},
		{PartID: "p", BoneID: "b", Weight: 0.5},
	}

	for _, kind := range []model.ModelKind{model.Humanoid, model.Robot} {
		got := Evaluate(kind, pose, parts, bindings)
		want := mgl32.QuatRotate(0.5, mgl32.Vec3{0, 0, 1})
		assert.True(t, got["p"].Rotation.OrientationEqualThreshold(want, 1e-4), "%s: got %v", kind, got["p"].Rotation)
	}
}

func TestZeroWeightKeepsRest(t *testing.T) {
	parts := []mesh.Part{{ID: "p", Transform: mesh.Transform{
		Position: mgl32.Vec3{1, 2, 3},
		Rotation: mgl32.Vec3{0, 0.5, 0},
		Scale:    mgl32.Vec3{1, 1, 1},
	}}}
	bindings := []binding.Binding{{PartID: "p", BoneID: "b", Weight: 0}}

	got := Evaluate(model.Robot, twoBones(), parts, bindings)
	assert.Equal(t, Rest(parts[0]), got["p"])
}

func TestUnresolvedBindingsAreSkipped(t *testing.T) {
	parts := []mesh.Part{
		{ID: "p", Transform: mesh.DefaultTransform()},
		{ID: "unbound", Transform: mesh.DefaultTransform()},
	}
	bindings := []binding.Binding{
		{PartID: "p", BoneID: "deleted", Weight: 0.5},
		{PartID: "p", BoneID: "b", Weight: 0.5},
		{PartID: "ghost", BoneID: "a", Weight: 1},
	}

	got := Evaluate(model.Robot, twoBones(), parts, bindings)
	assert.Len(t, got, 1)
	assert.Equal(t, mgl32.Vec3{10, 0, 0}, got["p"].Position, "only the resolved bone contributes")
	assert.NotContains(t, got, "unbound")
}

func TestMatrix(t *testing.T) {
	pt := PartTransform{Position: mgl32.Vec3{1, 0, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
	assert.Equal(t, mgl32.Translate3D(1, 0, 0), pt.Matrix())
}
