// package skinning resolves the per-frame transform of every bound mesh part from the current bone pose.
package skinning

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/binding"
	"github.com/Carmen-Shannon/oxy-rig/engine/mesh"
	"github.com/Carmen-Shannon/oxy-rig/engine/model"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// PartTransform is the resolved transform of a mesh part for one frame.
type PartTransform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// Matrix returns the column-major model matrix T * R * S.
func (t PartTransform) Matrix() mgl32.Mat4 {
	return common.ModelMatrix(t.Position, t.Rotation, t.Scale)
}

// Rest returns the authored transform of a part as a PartTransform.
func Rest(p mesh.Part) PartTransform {
	return PartTransform{
		Position: p.Transform.Position,
		Rotation: common.EulerToQuat(p.Transform.Rotation),
		Scale:    p.Transform.Scale,
	}
}

// Evaluate computes the skinned transform of every part that has at least one binding.
//
// Humanoid parts are rigid bone followers: the position snaps to the world position of the last
// contributing bone. Robot parts blend: the position is the weighted average of each bone's world
// position plus the binding offset rotated into the bone's current frame. Both kinds blend rotation
// by accumulating slerp in binding order: slerp(acc, next, w / (sum + w)), starting from identity.
//
// Bindings whose part or bone cannot be resolved are skipped. A part whose resolved bindings sum to
// zero weight keeps its rest transform. Parts' authored transforms are never modified.
//
// Parameters:
//   - kind: the model kind selecting the position policy
//   - pose: the evaluated bone pose for this frame
//   - parts: the mesh parts
//   - bindings: the bindings, in processing order
//
// Returns:
//   - map[string]PartTransform: transforms keyed by part ID for every part with a binding
func Evaluate(kind model.ModelKind, pose *skeleton.Pose, parts []mesh.Part, bindings []binding.Binding) map[string]PartTransform {
	byID := make(map[string]mesh.Part, len(parts))
	for _, p := range parts {
		byID[p.ID] = p
	}

	accs := make(map[string]*accumulator)
	var order []string
	for _, b := range bindings {
		if _, ok := byID[b.PartID]; !ok {
			continue
		}
		world, ok := pose.World(b.BoneID)
		if !ok {
			continue
		}

		acc, ok := accs[b.PartID]
		if !ok {
			acc = &accumulator{rotation: mgl32.QuatIdent()}
			accs[b.PartID] = acc
			order = append(order, b.PartID)
		}
		acc.add(kind, world, b)
	}

	out := make(map[string]PartTransform, len(order))
	for _, id := range order {
		part := byID[id]
		out[id] = accs[id].resolve(kind, part)
	}
	return out
}

type accumulator struct {
	weight   float32
	position mgl32.Vec3 // robot: weighted sum; humanoid: last bone position
	rotation mgl32.Quat
}

func (a *accumulator) add(kind model.ModelKind, world skeleton.WorldTransform, b binding.Binding) {
	w := b.Weight
	if a.weight+w != 0 {
		a.rotation = mgl32.QuatSlerp(a.rotation, world.Rotation, w/(a.weight+w))
	}
	a.weight += w

	if kind == model.Humanoid {
		a.position = world.Position
		return
	}
	a.position = a.position.Add(world.Position.Add(world.Rotation.Rotate(b.Offset)).Mul(w))
}

func (a *accumulator) resolve(kind model.ModelKind, part mesh.Part) PartTransform {
	if a.weight == 0 {
		return Rest(part)
	}

	pos := a.position
	if kind != model.Humanoid {
		pos = pos.Mul(1 / a.weight)
	}
	return PartTransform{
		Position: pos,
		Rotation: a.rotation,
		Scale:    part.Transform.Scale,
	}
}
