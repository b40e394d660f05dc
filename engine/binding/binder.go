// package binding contains the per-kind binding tables and the auto-binder that turns a list of
// mesh parts and bones into normalized weighted bindings.
package binding

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-rig/engine/mesh"
	"github.com/Carmen-Shannon/oxy-rig/engine/model"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// normalizedTolerance is how close to 1 a group sum must be to count as already normalized.
const normalizedTolerance = 1e-6

var bindingNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/Carmen-Shannon/oxy-rig/binding"))

// GenerateAuto is Generate with the kind derived from the part names (a part named "Head" or "Torso"
// selects the humanoid table). Prefer Generate with the model's explicit kind.
//
// Parameters:
//   - parts: the mesh parts to bind
//   - bones: the bones available for binding
//
// Returns:
//   - []Binding: the raw (not normalized) bindings
func GenerateAuto(parts []mesh.Part, bones []skeleton.Bone) []Binding {
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = p.Name
	}
	return Generate(model.DetectKind(names), parts, bones)
}

// Generate binds parts to bones using the table for kind.
// A part found in the table is bound to the entry's bone and, if present, to its secondary bone.
// For humanoids every part named with the "Hair_" prefix is also bound to the Head bone at weight 1.
// Bones are looked up by name; a missing bone drops that binding and a part with no entry gets none.
// The result is deterministic: identical inputs give identical bindings, IDs included.
//
// Parameters:
//   - kind: the model kind, selecting the table and the hair rule
//   - parts: the mesh parts to bind
//   - bones: the bones available for binding
//
// Returns:
//   - []Binding: the raw (not normalized) bindings in part order
func Generate(kind model.ModelKind, parts []mesh.Part, bones []skeleton.Bone) []Binding {
	return GenerateWithTable(kind, TableFor(kind), parts, bones)
}

// GenerateWithTable is Generate with a caller-supplied table.
//
// Parameters:
//   - kind: the model kind (only the hair rule depends on it here)
//   - table: the part name -> entry table
//   - parts: the mesh parts to bind
//   - bones: the bones available for binding
//
// Returns:
//   - []Binding: the raw (not normalized) bindings in part order
func GenerateWithTable(kind model.ModelKind, table Table, parts []mesh.Part, bones []skeleton.Bone) []Binding {
	g := newGenerator(bones)

	var out []Binding
	for _, p := range parts {
		if entry, ok := table[p.Name]; ok {
			out = g.bind(out, p, entry.Bone, entry.Weight, 0)
			if entry.Secondary != "" {
				out = g.bind(out, p, entry.Secondary, entry.SecondaryWeight, 1)
			}
		}
		if kind == model.Humanoid && strings.HasPrefix(p.Name, HairPrefix) {
			out = g.bind(out, p, HeadBone, 1.0, 2)
		}
	}
	return out
}

type generator struct {
	byName map[string]skeleton.Bone
	pose   *skeleton.Pose
}

func newGenerator(bones []skeleton.Bone) *generator {
	byName := make(map[string]skeleton.Bone, len(bones))
	for _, b := range bones {
		if _, ok := byName[b.Name]; !ok {
			byName[b.Name] = b
		}
	}
	return &generator{byName: byName, pose: skeleton.NewPose(bones)}
}

func (g *generator) bind(out []Binding, part mesh.Part, boneName string, weight float32, slot int) []Binding {
	bone, ok := g.byName[boneName]
	if !ok {
		return out
	}

	var offset mgl32.Vec3
	if w, ok := g.pose.World(bone.ID); ok {
		offset = w.Rotation.Inverse().Rotate(part.Transform.Position.Sub(w.Position))
	}

	key := part.ID + "/" + bone.ID + "/" + strconv.Itoa(slot)
	return append(out, Binding{
		ID:     uuid.NewSHA1(bindingNamespace, []byte(key)).String(),
		PartID: part.ID,
		BoneID: bone.ID,
		Weight: weight,
		Offset: offset,
	})
}

// Normalize rescales weights so that the bindings of each part sum to 1.
// Groups whose sum is 0 are left unchanged, and groups already summing to 1 are not touched,
// so normalizing twice gives the same result as normalizing once.
//
// Parameters:
//   - bindings: the bindings to normalize (not modified)
//
// Returns:
//   - []Binding: a new slice with normalized weights, in the input order
func Normalize(bindings []Binding) []Binding {
	sums := make(map[string]float32)
	for _, b := range bindings {
		sums[b.PartID] += b.Weight
	}

	out := make([]Binding, len(bindings))
	for i, b := range bindings {
		sum := sums[b.PartID]
		if sum != 0 && mgl32.Abs(sum-1) > normalizedTolerance {
			b.Weight /= sum
		}
		out[i] = b
	}
	return out
}

// Validate checks that every binding references an existing part and bone and has a weight in [0, 1].
// It reports problems without changing anything.
//
// Parameters:
//   - bindings: the bindings to check
//   - parts: the current mesh parts
//   - bones: the current bones
//
// Returns:
//   - ValidationResult: Valid is true when Errors is empty
func Validate(bindings []Binding, parts []mesh.Part, bones []skeleton.Bone) ValidationResult {
	partIDs := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		partIDs[p.ID] = struct{}{}
	}
	boneIDs := make(map[string]struct{}, len(bones))
	for _, b := range bones {
		boneIDs[b.ID] = struct{}{}
	}

	var errs []string
	for _, b := range bindings {
		if _, ok := partIDs[b.PartID]; !ok {
			errs = append(errs, fmt.Sprintf("binding %s: mesh part %q does not exist", b.ID, b.PartID))
		}
		if _, ok := boneIDs[b.BoneID]; !ok {
			errs = append(errs, fmt.Sprintf("binding %s: bone %q does not exist", b.ID, b.BoneID))
		}
		if !(b.Weight >= 0 && b.Weight <= 1) {
			errs = append(errs, fmt.Sprintf("binding %s: weight %g is outside [0, 1]", b.ID, b.Weight))
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// FindUnresolved lists the table references that Generate would silently drop because the named
// bone is not in the skeleton. Generation itself stays tolerant; this is for diagnostics.
//
// Parameters:
//   - kind: the model kind
//   - parts: the mesh parts
//   - bones: the bones available for binding
//
// Returns:
//   - []Unresolved: one entry per dropped reference, in part order
func FindUnresolved(kind model.ModelKind, parts []mesh.Part, bones []skeleton.Bone) []Unresolved {
	names := make(map[string]struct{}, len(bones))
	for _, b := range bones {
		names[b.Name] = struct{}{}
	}
	table := TableFor(kind)

	var out []Unresolved
	check := func(p mesh.Part, bone string) {
		if _, ok := names[bone]; !ok {
			out = append(out, Unresolved{PartID: p.ID, PartName: p.Name, BoneName: bone})
		}
	}
	for _, p := range parts {
		if entry, ok := table[p.Name]; ok {
			check(p, entry.Bone)
			if entry.Secondary != "" {
				check(p, entry.Secondary)
			}
		}
		if kind == model.Humanoid && strings.HasPrefix(p.Name, HairPrefix) {
			check(p, HeadBone)
		}
	}
	return out
}

// WithoutBones returns the bindings that do not reference any of the given bones.
func WithoutBones(bindings []Binding, boneIDs ...string) []Binding {
	return without(bindings, boneIDs, func(b Binding) string { return b.BoneID })
}

// WithoutParts returns the bindings that do not reference any of the given parts.
func WithoutParts(bindings []Binding, partIDs ...string) []Binding {
	return without(bindings, partIDs, func(b Binding) string { return b.PartID })
}

func without(bindings []Binding, ids []string, key func(Binding) string) []Binding {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make([]Binding, 0, len(bindings))
	for _, b := range bindings {
		if _, ok := drop[key(b)]; !ok {
			out = append(out, b)
		}
	}
	return out
}
