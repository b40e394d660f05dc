package renderer

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-rig/engine/scene"
)

// GizmoDefaultColor, GizmoRootColor and GizmoSelectedColor are the RGBA colors of bone gizmos by state.
var (
	GizmoDefaultColor  = [4]float32{0.2, 0.8, 1.0, 1.0}
	GizmoRootColor     = [4]float32{1.0, 0.3, 0.3, 1.0}
	GizmoSelectedColor = [4]float32{1.0, 0.85, 0.1, 1.0}
)

// GizmoColor returns the RGBA color for a gizmo state. Unknown states use the default color.
func GizmoColor(state scene.GizmoState) [4]float32 {
	switch state {
	case scene.GizmoRoot:
		return GizmoRootColor
	case scene.GizmoSelected:
		return GizmoSelectedColor
	default:
		return GizmoDefaultColor
	}
}

// GPUPartInstance is the GPU-aligned per-instance data of one mesh part.
// Size: 64 bytes (a column-major 4x4 model matrix, std430 aligned).
type GPUPartInstance struct {
	Model [16]float32 // offset 0: T * R * S model matrix (64 bytes)
}

// Size returns the size of the GPUPartInstance struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUPartInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPartInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUPartInstance) Marshal() []byte {
	buf := make([]byte, 64)
	putFloats(buf, g.Model[:])
	return buf
}

// GPUGizmoInstance is the GPU-aligned per-instance data of one bone gizmo.
// Size: 80 bytes (64 model matrix + 16 color, std430 aligned).
type GPUGizmoInstance struct {
	Model [16]float32 // offset  0: bone world matrix scaled by the bone length (64 bytes)
	Color [4]float32  // offset 64: RGBA color selected by gizmo state (16 bytes)
}

// Size returns the size of the GPUGizmoInstance struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUGizmoInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUGizmoInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload.
func (g *GPUGizmoInstance) Marshal() []byte {
	buf := make([]byte, 80)
	putFloats(buf[0:64], g.Model[:])
	putFloats(buf[64:80], g.Color[:])
	return buf
}

func putFloats(buf []byte, values []float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
}
