package mesh

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrEmptyPartID is returned when a part without an ID is added.
	ErrEmptyPartID = errors.New("part id is empty")
	// ErrPartExists is returned when a part ID is already present.
	ErrPartExists = errors.New("part already exists")
	// ErrCycle is returned when a parent link would make a part its own ancestor.
	ErrCycle = errors.New("parent link would create a cycle")
)

// Geometry describes the primitive a part is rendered with.
type Geometry struct {
	// Type is the primitive name, e.g. "box", "sphere", "cylinder", "capsule".
	Type string `yaml:"type"`
	// Args are the primitive's shape arguments in the renderer's order (e.g. width, height, depth).
	Args []float32 `yaml:"args,flow,omitempty"`
}

// Material describes the surface of a part.
type Material struct {
	Color     string  `yaml:"color"`
	Metalness float32 `yaml:"metalness"`
	Roughness float32 `yaml:"roughness"`
	Emissive  string  `yaml:"emissive,omitempty"`
}

// Transform is a local position, XYZ Euler rotation (radians) and scale.
type Transform struct {
	Position mgl32.Vec3 `yaml:"position,flow"`
	Rotation mgl32.Vec3 `yaml:"rotation,flow"`
	Scale    mgl32.Vec3 `yaml:"scale,flow"`
}

// DefaultTransform returns a transform at the origin with unit scale.
func DefaultTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Part is a named mesh piece of a model.
// Many algorithms dispatch on the exact Name (binding tables, "Hair_" prefix), so names are significant.
type Part struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Geometry  Geometry  `yaml:"geometry"`
	Material  Material  `yaml:"material"`
	Transform Transform `yaml:"transform"`
	// ParentID links the part into its own hierarchy, independent of the skeleton.
	ParentID string `yaml:"parent,omitempty"`
}
