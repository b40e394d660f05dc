package skeleton

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Pose is a detached copy of a skeleton's local transforms.
// World transforms are memoized for the lifetime of the pose (one evaluation pass), so bones that
// share ancestors only walk the shared part of the hierarchy once.
// A Pose is not safe for concurrent use.
type Pose struct {
	order []string
	bones map[string]Bone
	world map[string]WorldTransform
}

// NewPose creates a pose from a list of bones. Later duplicates of an ID replace earlier ones.
//
// Parameters:
//   - bones: the bones to copy into the pose
//
// Returns:
//   - *Pose: the new pose
func NewPose(bones []Bone) *Pose {
	p := &Pose{
		order: make([]string, 0, len(bones)),
		bones: make(map[string]Bone, len(bones)),
		world: make(map[string]WorldTransform, len(bones)),
	}
	for _, b := range bones {
		if _, ok := p.bones[b.ID]; !ok {
			p.order = append(p.order, b.ID)
		}
		p.bones[b.ID] = b
	}
	return p
}

// IDs returns the bone IDs in the order they were added.
func (p *Pose) IDs() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Len returns the number of bones in the pose.
func (p *Pose) Len() int {
	return len(p.order)
}

// Bone returns the bone with the given ID.
func (p *Pose) Bone(id string) (Bone, bool) {
	b, ok := p.bones[id]
	return b, ok
}

// Bones returns a copy of every bone in insertion order.
func (p *Pose) Bones() []Bone {
	out := make([]Bone, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.bones[id])
	}
	return out
}

// Locals returns the local position/rotation of every bone keyed by ID.
func (p *Pose) Locals() map[string]BonePose {
	out := make(map[string]BonePose, len(p.bones))
	for id, b := range p.bones {
		out[id] = BonePose{Position: b.Position, Rotation: b.Rotation}
	}
	return out
}

// SetRotation replaces the local rotation of a bone and drops all memoized world transforms.
//
// Parameters:
//   - id: the bone to update
//   - rot: the new local Euler rotation
//
// Returns:
//   - bool: false if the bone is not part of the pose
func (p *Pose) SetRotation(id string, rot mgl32.Vec3) bool {
	b, ok := p.bones[id]
	if !ok {
		return false
	}
	b.Rotation = rot
	p.bones[id] = b
	clear(p.world)
	return true
}

// World returns the world transform of a bone, computing and caching it and its ancestors as needed.
// A parent ID that does not resolve is treated as the identity, making the bone a root.
//
// Parameters:
//   - id: the bone to resolve
//
// Returns:
//   - WorldTransform: the composed transform
//   - bool: false if the bone is not part of the pose
func (p *Pose) World(id string) (WorldTransform, bool) {
	if _, ok := p.bones[id]; !ok {
		return WorldTransform{}, false
	}
	return p.resolve(id, 0), true
}

func (p *Pose) resolve(id string, depth int) WorldTransform {
	if w, ok := p.world[id]; ok {
		return w
	}
	b := p.bones[id]

	parent := identityWorld
	if _, ok := p.bones[b.ParentID]; ok && b.ParentID != id && depth <= len(p.bones) {
		parent = p.resolve(b.ParentID, depth+1)
	}

	local := common.LocalMatrix(b.Position, b.Rotation)
	m := parent.Matrix.Mul4(local)
	w := WorldTransform{
		Matrix:   m,
		Position: m.Col(3).Vec3(),
		Rotation: parent.Rotation.Mul(common.EulerToQuat(b.Rotation)).Normalize(),
	}
	p.world[id] = w
	return w
}

// IsAncestor reports whether ancestor appears on the parent chain of id.
// A bone is not its own ancestor.
//
// Parameters:
//   - ancestor: the candidate ancestor bone ID
//   - id: the descendant bone ID
//
// Returns:
//   - bool: true if ancestor is a strict ancestor of id
func (p *Pose) IsAncestor(ancestor, id string) bool {
	b, ok := p.bones[id]
	for steps := 0; ok && steps <= len(p.bones); steps++ {
		if b.ParentID == "" {
			return false
		}
		if b.ParentID == ancestor {
			return true
		}
		b, ok = p.bones[b.ParentID]
	}
	return false
}
