package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// gimbalLimit is the |sin(pitch)| above which QuatToEuler treats the rotation as gimbal locked.
const gimbalLimit = 0.9999999

var (
	axisX = mgl32.Vec3{1, 0, 0}
	axisY = mgl32.Vec3{0, 1, 0}
	axisZ = mgl32.Vec3{0, 0, 1}
)

// EulerToQuat converts Euler angles (radians) to a quaternion using XYZ order.
// The resulting rotation matrix is Rx * Ry * Rz, so Z is applied to a vector first.
//
// Parameters:
//   - e: rotation about X, Y and Z in radians
//
// Returns:
//   - mgl32.Quat: the unit quaternion for the rotation
func EulerToQuat(e mgl32.Vec3) mgl32.Quat {
	qx := mgl32.QuatRotate(e[0], axisX)
	qy := mgl32.QuatRotate(e[1], axisY)
	qz := mgl32.QuatRotate(e[2], axisZ)
	return qx.Mul(qy).Mul(qz)
}

// QuatToEuler converts a quaternion to XYZ-ordered Euler angles (radians).
// It is the inverse of EulerToQuat. When the Y rotation reaches +/-90 degrees the
// X and Z axes align and the whole remaining rotation is reported on X with Z = 0.
//
// Parameters:
//   - q: the rotation to convert (normalized before extraction)
//
// Returns:
//   - mgl32.Vec3: rotation about X, Y and Z in radians
func QuatToEuler(q mgl32.Quat) mgl32.Vec3 {
	m := q.Normalize().Mat4()
	m13 := m.At(0, 2)

	var e mgl32.Vec3
	e[1] = math32.Asin(mgl32.Clamp(m13, -1, 1))
	if math32.Abs(m13) < gimbalLimit {
		e[0] = math32.Atan2(-m.At(1, 2), m.At(2, 2))
		e[2] = math32.Atan2(-m.At(0, 1), m.At(0, 0))
	} else {
		e[0] = math32.Atan2(m.At(2, 1), m.At(1, 1))
		e[2] = 0
	}
	return e
}

// LocalMatrix builds the local transform of a bone from its position and Euler rotation.
// Scale is always 1. Result: T * R
//
// Parameters:
//   - pos: local translation
//   - rot: local Euler rotation (XYZ, radians)
//
// Returns:
//   - mgl32.Mat4: column-major local matrix
func LocalMatrix(pos, rot mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(pos[0], pos[1], pos[2]).Mul4(EulerToQuat(rot).Mat4())
}

// ModelMatrix builds a column-major model matrix from translation, rotation and scale.
// Result: T * R * S
//
// Parameters:
//   - pos: translation
//   - rot: rotation quaternion
//   - scale: per-axis scale
//
// Returns:
//   - mgl32.Mat4: the model matrix
func ModelMatrix(pos mgl32.Vec3, rot mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(pos[0], pos[1], pos[2])
	s := mgl32.Scale3D(scale[0], scale[1], scale[2])
	return t.Mul4(rot.Mat4()).Mul4(s)
}

// LerpVec3 linearly interpolates each component of a and b.
//
// Parameters:
//   - a: value at t = 0
//   - b: value at t = 1
//   - t: interpolation factor
//
// Returns:
//   - mgl32.Vec3: a + (b - a) * t
func LerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}
