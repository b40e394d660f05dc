package skeleton

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrEmptyBoneID is returned when a bone without an ID is added.
	ErrEmptyBoneID = errors.New("bone id is empty")
	// ErrBoneExists is returned when a bone ID is already present in the skeleton.
	ErrBoneExists = errors.New("bone already exists")
	// ErrBoneNotFound is returned by operations that require an existing bone.
	ErrBoneNotFound = errors.New("bone not found")
	// ErrCycle is returned when a parent link would make a bone its own ancestor.
	ErrCycle = errors.New("parent link would create a cycle")
)

// Bone is a single joint in a skeleton.
// Position and Rotation are local to the parent bone; Rotation holds XYZ Euler angles in radians.
type Bone struct {
	// ID uniquely identifies the bone within its skeleton.
	ID string `yaml:"id"`
	// Name is the human-readable name used by the binding tables and clip presets (e.g. "L_Hip").
	Name string `yaml:"name"`
	// Position is the local translation relative to the parent.
	Position mgl32.Vec3 `yaml:"position,flow"`
	// Rotation is the local XYZ Euler rotation in radians.
	Rotation mgl32.Vec3 `yaml:"rotation,flow"`
	// Length is only used for visualization.
	Length float32 `yaml:"length"`
	// ParentID is the ID of the parent bone, or empty for a root.
	ParentID string `yaml:"parent,omitempty"`
}

// IsRoot reports whether the bone has no declared parent.
func (b Bone) IsRoot() bool {
	return b.ParentID == ""
}

// BonePose is a local position/rotation snapshot for one bone, as written by animation playback.
type BonePose struct {
	Position mgl32.Vec3 `yaml:"position,flow"`
	Rotation mgl32.Vec3 `yaml:"rotation,flow"`
}

// WorldTransform is the composed transform of a bone in skeleton space.
type WorldTransform struct {
	// Matrix is parentWorld * local, column-major.
	Matrix mgl32.Mat4
	// Position is the translation column of Matrix.
	Position mgl32.Vec3
	// Rotation is the accumulated rotation of the bone and all of its ancestors.
	Rotation mgl32.Quat
}

var identityWorld = WorldTransform{
	Matrix:   mgl32.Ident4(),
	Rotation: mgl32.QuatIdent(),
}
