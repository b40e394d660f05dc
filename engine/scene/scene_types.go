package scene

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-rig/engine/binding"
	"github.com/Carmen-Shannon/oxy-rig/engine/skinning"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrClipNotFound is returned by Play when no clip has the requested name.
	ErrClipNotFound = errors.New("clip not found")
	// ErrNilClip is returned by AddClip when passed a nil clip.
	ErrNilClip = errors.New("clip is nil")
)

// GizmoState selects how a bone gizmo is drawn.
type GizmoState uint8

const (
	GizmoDefault GizmoState = iota
	GizmoRoot
	GizmoSelected
)

// String returns the lower-case name of the gizmo state.
func (g GizmoState) String() string {
	switch g {
	case GizmoDefault:
		return "default"
	case GizmoRoot:
		return "root"
	case GizmoSelected:
		return "selected"
	default:
		return "unknown"
	}
}

// BoneGizmo is the debug visualization record of one bone for a frame.
type BoneGizmo struct {
	ID       string
	Name     string
	ParentID string
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Length   float32
	State    GizmoState
}

// Frame is everything a renderer needs to present one tick of a scene.
type Frame struct {
	// SceneID identifies the scene the frame belongs to.
	SceneID string
	// Time is the play-head time after the tick.
	Time float32
	// Animated is true when part transforms come from skinning rather than the authored rest transforms.
	Animated bool
	// Parts holds a transform for every mesh part, keyed by part ID.
	Parts map[string]skinning.PartTransform
	// Bones holds a gizmo per bone, in skeleton order.
	Bones []BoneGizmo
	// Selected is the selected bone ID, or empty.
	Selected string
}

// Diagnostics reports data problems that the tolerant lookups otherwise hide.
type Diagnostics struct {
	// Dangling lists bones whose parent ID does not resolve.
	Dangling []string
	// Unresolved lists binding table references whose bone is missing from the skeleton.
	Unresolved []binding.Unresolved
	// Validation is the result of validating the current bindings.
	Validation binding.ValidationResult
}

// Healthy reports whether no problem was found.
func (d Diagnostics) Healthy() bool {
	return len(d.Dangling) == 0 && len(d.Unresolved) == 0 && d.Validation.Valid
}
