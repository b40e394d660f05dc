package binding

import "github.com/go-gl/mathgl/mgl32"

// Binding attaches one mesh part to one bone with a weight in [0, 1].
type Binding struct {
	ID     string  `yaml:"id"`
	PartID string  `yaml:"part"`
	BoneID string  `yaml:"bone"`
	Weight float32 `yaml:"weight"`
	// Offset is the part's rest position expressed in the bone's rest frame.
	// The robot skinning policy rotates it by the bone's current world rotation.
	Offset mgl32.Vec3 `yaml:"offset,flow"`
}

// Entry is one row of a binding table: the bone (by name) a part follows, and an optional second bone.
type Entry struct {
	Bone            string
	Weight          float32
	Secondary       string
	SecondaryWeight float32
}

// Table maps a part name to its binding entry.
type Table map[string]Entry

// ValidationResult is the outcome of Validate. Errors are human-readable and in binding order.
type ValidationResult struct {
	Valid  bool     `yaml:"valid"`
	Errors []string `yaml:"errors,omitempty"`
}

// Unresolved is a table reference that could not be bound because the named bone is missing.
type Unresolved struct {
	PartID   string
	PartName string
	BoneName string
}
