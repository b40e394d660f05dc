package skeleton

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoseMemoizesUntilEdited(t *testing.T) {
	p := chain().Snapshot()

	w, ok := p.World("tip")
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{0, 2, 0}, w.Position)
	assert.Len(t, p.world, 3, "ancestors are cached on the way down")

	require.True(t, p.SetRotation("root", mgl32.Vec3{0, 0, mgl32.DegToRad(90)}))
	assert.Empty(t, p.world)

	w, _ = p.World("tip")
	assert.Less(t, w.Position.Sub(mgl32.Vec3{-2, 0, 0}).Len(), float32(1e-5), "got %v", w.Position)
	assert.False(t, p.SetRotation("nope", mgl32.Vec3{}))
}

func TestPoseIsDetached(t *testing.T) {
	s := chain()
	p := s.Snapshot()
	p.SetRotation("root", mgl32.Vec3{1, 0, 0})

	root, _ := s.Bone("root")
	assert.Equal(t, mgl32.Vec3{}, root.Rotation)
}

func TestPoseIsAncestor(t *testing.T) {
	p := chain().Snapshot()
	assert.True(t, p.IsAncestor("root", "tip"))
	assert.True(t, p.IsAncestor("mid", "tip"))
	assert.False(t, p.IsAncestor("tip", "root"))
	assert.False(t, p.IsAncestor("tip", "tip"))
}

func TestPoseWorldRotation(t *testing.T) {
	p := NewPose([]Bone{
		{ID: "a", Rotation: mgl32.Vec3{0, 0, 0.5}},
		{ID: "b", Rotation: mgl32.Vec3{0, 0, 0.25}, ParentID: "a"},
	})
	w, ok := p.World("b")
	require.True(t, ok)

	want := mgl32.QuatRotate(0.75, mgl32.Vec3{0, 0, 1})
	assert.True(t, w.Rotation.OrientationEqualThreshold(want, 1e-5))

	_, ok = p.World("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, p.IDs())
	assert.Len(t, p.Locals(), 2)
}
