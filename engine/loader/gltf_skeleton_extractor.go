package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// gltfJoint is a skin joint converted to a bone, keyed by its glTF node index.
type gltfJoint struct {
	node int
	bone skeleton.Bone
}

// extractSkeleton converts the joints of a skin into bones.
// Parents are derived from node children; a joint whose parent node is not itself a joint becomes a root.
// Bones are returned parents-first, and each bone's Length is the distance to its first child joint.
//
// Parameters:
//   - doc: the parsed document
//   - skinIndex: the skin to extract
//
// Returns:
//   - []gltfJoint: the joints in topological order
//   - error: error if a joint references a missing node
func extractSkeleton(doc *gltfDocument, skinIndex int) ([]gltfJoint, error) {
	if skinIndex < 0 || skinIndex >= len(doc.Skins) {
		return nil, fmt.Errorf("skin index %d out of range", skinIndex)
	}
	skin := &doc.Skins[skinIndex]

	byNode := make(map[int]*gltfJoint, len(skin.Joints))
	order := make([]int, 0, len(skin.Joints))
	for i, nodeIdx := range skin.Joints {
		if nodeIdx < 0 || nodeIdx >= len(doc.Nodes) {
			return nil, fmt.Errorf("joint %d: invalid node index %d", i, nodeIdx)
		}
		if _, dup := byNode[nodeIdx]; dup {
			continue
		}

		node := &doc.Nodes[nodeIdx]
		pos, rot := gltfNodeTransform(node)
		name := node.Name
		if name == "" {
			name = fmt.Sprintf("bone_%d", i)
		}

		byNode[nodeIdx] = &gltfJoint{
			node: nodeIdx,
			bone: skeleton.Bone{
				ID:       uuid.NewString(),
				Name:     name,
				Position: pos,
				Rotation: common.QuatToEuler(rot),
			},
		}
		order = append(order, nodeIdx)
	}

	// Parent links and lengths come from the node hierarchy.
	children := make(map[int][]int)
	for parentIdx, node := range doc.Nodes {
		parent, isJoint := byNode[parentIdx]
		if !isJoint {
			continue
		}
		for _, childIdx := range node.Children {
			child, ok := byNode[childIdx]
			if !ok || child.bone.ParentID != "" {
				continue
			}
			child.bone.ParentID = parent.bone.ID
			children[parentIdx] = append(children[parentIdx], childIdx)
			if parent.bone.Length == 0 {
				parent.bone.Length = child.bone.Position.Len()
			}
		}
	}

	// Breadth-first from the roots so parents precede children.
	sorted := make([]gltfJoint, 0, len(order))
	queue := make([]int, 0, len(order))
	for _, nodeIdx := range order {
		if byNode[nodeIdx].bone.ParentID == "" {
			queue = append(queue, nodeIdx)
		}
	}
	for len(queue) > 0 {
		nodeIdx := queue[0]
		queue = queue[1:]
		sorted = append(sorted, *byNode[nodeIdx])
		queue = append(queue, children[nodeIdx]...)
	}
	return sorted, nil
}

// gltfNodeTransform returns a node's local translation and rotation. Scale is discarded since bones carry none.
func gltfNodeTransform(node *gltfNode) (mgl32.Vec3, mgl32.Quat) {
	if node.Matrix != nil {
		return gltfDecomposeMatrix(mgl32.Mat4(*node.Matrix))
	}

	pos := mgl32.Vec3{}
	rot := mgl32.QuatIdent()
	if node.Translation != nil {
		pos = mgl32.Vec3(*node.Translation)
	}
	if node.Rotation != nil {
		rot = gltfQuat(*node.Rotation)
	}
	return pos, rot
}

// gltfDecomposeMatrix splits a column-major matrix into translation and rotation, assuming no shear.
func gltfDecomposeMatrix(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat) {
	pos := m.Col(3).Vec3()

	var rot mgl32.Mat4
	for c := 0; c < 3; c++ {
		col := m.Col(c).Vec3()
		s := col.Len()
		if s < 1e-4 {
			s = 1
		}
		rot.SetCol(c, col.Mul(1/s).Vec4(0))
	}
	rot.SetCol(3, mgl32.Vec4{0, 0, 0, 1})

	return pos, mgl32.Mat4ToQuat(rot).Normalize()
}

// gltfQuat converts a glTF (x, y, z, w) quaternion.
func gltfQuat(v [4]float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}
