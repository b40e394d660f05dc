package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestEulerToQuatSingleAxis(t *testing.T) {
	q := EulerToQuat(mgl32.Vec3{0, 0, mgl32.DegToRad(90)})
	v := q.Rotate(mgl32.Vec3{1, 0, 0})
	assert.Less(t, v.Sub(mgl32.Vec3{0, 1, 0}).Len(), float32(1e-5), "got %v", v)

	q = EulerToQuat(mgl32.Vec3{mgl32.DegToRad(90), 0, 0})
	v = q.Rotate(mgl32.Vec3{0, 1, 0})
	assert.Less(t, v.Sub(mgl32.Vec3{0, 0, 1}).Len(), float32(1e-5), "got %v", v)
}

func TestEulerToQuatAppliesZFirst(t *testing.T) {
	// Rx(90) * Rz(90): Z maps +X to +Y, then X maps +Y to +Z.
	q := EulerToQuat(mgl32.Vec3{mgl32.DegToRad(90), 0, mgl32.DegToRad(90)})
	v := q.Rotate(mgl32.Vec3{1, 0, 0})
	assert.Less(t, v.Sub(mgl32.Vec3{0, 0, 1}).Len(), float32(1e-5), "got %v", v)
}

func TestQuatToEulerRoundTrip(t *testing.T) {
	cases := []mgl32.Vec3{
		{0, 0, 0},
		{0.3, -0.2, 0.1},
		{-1.2, 0.7, 2.5},
		{0.5, 1.2, -0.4},
	}
	for _, e := range cases {
		got := QuatToEuler(EulerToQuat(e))
		assert.Less(t, got.Sub(e).Len(), float32(1e-4), "want %v got %v", e, got)
	}
}

func TestQuatToEulerGimbal(t *testing.T) {
	e := mgl32.Vec3{0.4, mgl32.DegToRad(90), 0}
	got := QuatToEuler(EulerToQuat(e))
	assert.InDelta(t, mgl32.DegToRad(90), got[1], 1e-3)

	// Same orientation even though the split between X and Z may differ.
	assert.True(t, EulerToQuat(got).OrientationEqualThreshold(EulerToQuat(e), 1e-3))
}

func TestLocalMatrix(t *testing.T) {
	m := LocalMatrix(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 0, mgl32.DegToRad(90)})
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	assert.Less(t, p.Sub(mgl32.Vec3{1, 3, 3}).Len(), float32(1e-5), "got %v", p)
}

func TestModelMatrixAppliesScaleFirst(t *testing.T) {
	m := ModelMatrix(mgl32.Vec3{0, 0, 5}, mgl32.QuatIdent(), mgl32.Vec3{2, 2, 2})
	p := m.Mul4x1(mgl32.Vec4{1, 1, 1, 1}).Vec3()
	assert.Less(t, p.Sub(mgl32.Vec3{2, 2, 7}).Len(), float32(1e-5), "got %v", p)
}

func TestLerpVec3(t *testing.T) {
	got := LerpVec3(mgl32.Vec3{0, 10, -2}, mgl32.Vec3{10, 20, 2}, 0.25)
	assert.Equal(t, mgl32.Vec3{2.5, 12.5, -1}, got)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32{}))
	assert.Len(t, SliceToBytes([]float32{1, 2, 3}), 12)
}
