package model

import (
	"github.com/Carmen-Shannon/oxy-rig/engine/mesh"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// boneSpec and partSpec describe preset content by name; IDs are generated when the preset is built.
type boneSpec struct {
	name   string
	parent string
	pos    mgl32.Vec3
	length float32
}

type partSpec struct {
	name     string
	anchor   string // bone whose rest world position places the part
	offset   mgl32.Vec3
	geometry mesh.Geometry
	color    string
}

var humanoidBones = []boneSpec{
	{"Hips", "", mgl32.Vec3{0, 1.0, 0}, 0.1},
	{"Spine", "Hips", mgl32.Vec3{0, 0.1, 0}, 0.15},
	{"Spine1", "Spine", mgl32.Vec3{0, 0.15, 0}, 0.15},
	{"Spine2", "Spine1", mgl32.Vec3{0, 0.15, 0}, 0.15},
	{"Neck", "Spine2", mgl32.Vec3{0, 0.15, 0}, 0.1},
	{"Head", "Neck", mgl32.Vec3{0, 0.1, 0}, 0.2},
	{"L_Shoulder", "Spine2", mgl32.Vec3{0.18, 0.1, 0}, 0.28},
	{"L_Elbow", "L_Shoulder", mgl32.Vec3{0.28, 0, 0}, 0.25},
	{"L_Wrist", "L_Elbow", mgl32.Vec3{0.25, 0, 0}, 0.08},
	{"R_Shoulder", "Spine2", mgl32.Vec3{-0.18, 0.1, 0}, 0.28},
	{"R_Elbow", "R_Shoulder", mgl32.Vec3{-0.28, 0, 0}, 0.25},
	{"R_Wrist", "R_Elbow", mgl32.Vec3{-0.25, 0, 0}, 0.08},
	{"L_Hip", "Hips", mgl32.Vec3{0.1, -0.05, 0}, 0.45},
	{"L_Knee", "L_Hip", mgl32.Vec3{0, -0.45, 0}, 0.45},
	{"L_Ankle", "L_Knee", mgl32.Vec3{0, -0.45, 0}, 0.1},
	{"R_Hip", "Hips", mgl32.Vec3{-0.1, -0.05, 0}, 0.45},
	{"R_Knee", "R_Hip", mgl32.Vec3{0, -0.45, 0}, 0.45},
	{"R_Ankle", "R_Knee", mgl32.Vec3{0, -0.45, 0}, 0.1},
}

var humanoidParts = []partSpec{
	{"Head", "Head", mgl32.Vec3{0, 0.1, 0}, box(0.2, 0.24, 0.22), "#f1c27d"},
	{"Hair_Top", "Head", mgl32.Vec3{0, 0.23, 0}, box(0.22, 0.05, 0.24), "#3b2a1a"},
	{"Hair_Back", "Head", mgl32.Vec3{0, 0.12, -0.12}, box(0.22, 0.2, 0.04), "#3b2a1a"},
	{"Neck", "Neck", mgl32.Vec3{0, 0.05, 0}, cylinder(0.05, 0.1), "#f1c27d"},
	{"Torso", "Spine1", mgl32.Vec3{0, 0.1, 0}, box(0.36, 0.45, 0.2), "#3366cc"},
	{"Pelvis", "Hips", mgl32.Vec3{0, 0, 0}, box(0.32, 0.15, 0.18), "#333333"},
	{"L_UpperArm", "L_Shoulder", mgl32.Vec3{0.14, 0, 0}, capsule(0.05, 0.28), "#3366cc"},
	{"L_Forearm", "L_Elbow", mgl32.Vec3{0.12, 0, 0}, capsule(0.045, 0.25), "#f1c27d"},
	{"L_Hand", "L_Wrist", mgl32.Vec3{0.05, 0, 0}, box(0.08, 0.1, 0.04), "#f1c27d"},
	{"R_UpperArm", "R_Shoulder", mgl32.Vec3{-0.14, 0, 0}, capsule(0.05, 0.28), "#3366cc"},
	{"R_Forearm", "R_Elbow", mgl32.Vec3{-0.12, 0, 0}, capsule(0.045, 0.25), "#f1c27d"},
	{"R_Hand", "R_Wrist", mgl32.Vec3{-0.05, 0, 0}, box(0.08, 0.1, 0.04), "#f1c27d"},
	{"L_Thigh", "L_Hip", mgl32.Vec3{0, -0.22, 0}, capsule(0.07, 0.45), "#333333"},
	{"L_Shin", "L_Knee", mgl32.Vec3{0, -0.22, 0}, capsule(0.06, 0.45), "#333333"},
	{"L_Foot", "L_Ankle", mgl32.Vec3{0, -0.04, 0.05}, box(0.1, 0.08, 0.24), "#222222"},
	{"R_Thigh", "R_Hip", mgl32.Vec3{0, -0.22, 0}, capsule(0.07, 0.45), "#333333"},
	{"R_Shin", "R_Knee", mgl32.Vec3{0, -0.22, 0}, capsule(0.06, 0.45), "#333333"},
	{"R_Foot", "R_Ankle", mgl32.Vec3{0, -0.04, 0.05}, box(0.1, 0.08, 0.24), "#222222"},
}

var robotBones = []boneSpec{
	{"Base", "", mgl32.Vec3{0, 0.8, 0}, 0.3},
	{"Chassis", "Base", mgl32.Vec3{0, 0.3, 0}, 0.4},
	{"Turret", "Chassis", mgl32.Vec3{0, 0.4, 0}, 0.2},
	{"Sensor", "Turret", mgl32.Vec3{0, 0.2, 0}, 0.1},
	{"L_ArmMount", "Chassis", mgl32.Vec3{0.4, 0.2, 0}, 0.35},
	{"L_ArmJoint", "L_ArmMount", mgl32.Vec3{0.35, 0, 0}, 0.3},
	{"L_Claw", "L_ArmJoint", mgl32.Vec3{0.3, 0, 0}, 0.1},
	{"R_ArmMount", "Chassis", mgl32.Vec3{-0.4, 0.2, 0}, 0.35},
	{"R_ArmJoint", "R_ArmMount", mgl32.Vec3{-0.35, 0, 0}, 0.3},
	{"R_Claw", "R_ArmJoint", mgl32.Vec3{-0.3, 0, 0}, 0.1},
	{"L_LegMount", "Base", mgl32.Vec3{0.25, -0.1, 0}, 0.35},
	{"L_LegJoint", "L_LegMount", mgl32.Vec3{0, -0.35, 0}, 0.35},
	{"L_FootPad", "L_LegJoint", mgl32.Vec3{0, -0.35, 0}, 0.05},
	{"R_LegMount", "Base", mgl32.Vec3{-0.25, -0.1, 0}, 0.35},
	{"R_LegJoint", "R_LegMount", mgl32.Vec3{0, -0.35, 0}, 0.35},
	{"R_FootPad", "R_LegJoint", mgl32.Vec3{0, -0.35, 0}, 0.05},
}

var robotParts = []partSpec{
	{"Chassis", "Chassis", mgl32.Vec3{0, 0.2, 0}, box(0.7, 0.5, 0.5), "#8899aa"},
	{"Core", "Chassis", mgl32.Vec3{0, 0.1, 0.26}, sphere(0.1), "#33ddff"},
	{"Turret", "Turret", mgl32.Vec3{0, 0.08, 0}, cylinder(0.2, 0.16), "#667788"},
	{"Sensor", "Sensor", mgl32.Vec3{0, 0.05, 0.1}, sphere(0.06), "#ff3333"},
	{"Antenna", "Sensor", mgl32.Vec3{0.1, 0.15, 0}, cylinder(0.01, 0.3), "#cccccc"},
	{"L_Arm", "L_ArmMount", mgl32.Vec3{0.18, 0, 0}, box(0.35, 0.1, 0.1), "#667788"},
	{"L_Claw", "L_Claw", mgl32.Vec3{0.05, 0, 0}, box(0.1, 0.12, 0.06), "#444444"},
	{"R_Arm", "R_ArmMount", mgl32.Vec3{-0.18, 0, 0}, box(0.35, 0.1, 0.1), "#667788"},
	{"R_Claw", "R_Claw", mgl32.Vec3{-0.05, 0, 0}, box(0.1, 0.12, 0.06), "#444444"},
	{"L_Leg", "L_LegMount", mgl32.Vec3{0, -0.18, 0}, box(0.12, 0.35, 0.12), "#667788"},
	{"L_Foot", "L_FootPad", mgl32.Vec3{0, -0.03, 0.04}, box(0.18, 0.06, 0.26), "#444444"},
	{"R_Leg", "R_LegMount", mgl32.Vec3{0, -0.18, 0}, box(0.12, 0.35, 0.12), "#667788"},
	{"R_Foot", "R_FootPad", mgl32.Vec3{0, -0.03, 0.04}, box(0.18, 0.06, 0.26), "#444444"},
}

func box(w, h, d float32) mesh.Geometry {
	return mesh.Geometry{Type: "box", Args: []float32{w, h, d}}
}

func sphere(r float32) mesh.Geometry {
	return mesh.Geometry{Type: "sphere", Args: []float32{r}}
}

func cylinder(r, h float32) mesh.Geometry {
	return mesh.Geometry{Type: "cylinder", Args: []float32{r, r, h}}
}

func capsule(r, l float32) mesh.Geometry {
	return mesh.Geometry{Type: "capsule", Args: []float32{r, l}}
}

// NewHumanoid generates the humanoid preset: an 18-bone biped and the parts the humanoid binding table expects.
//
// Returns:
//   - Model: a humanoid model with freshly generated IDs
func NewHumanoid() Model {
	return buildPreset("humanoid", Humanoid, humanoidBones, humanoidParts, 0.2)
}

// NewRobot generates the robot preset: a walker with a turret and two arms.
//
// Returns:
//   - Model: a robot model with freshly generated IDs
func NewRobot() Model {
	return buildPreset("robot", Robot, robotBones, robotParts, 0.6)
}

// NewPreset generates the preset for a kind.
//
// Parameters:
//   - kind: Humanoid or Robot
//
// Returns:
//   - Model: the generated model
func NewPreset(kind ModelKind) Model {
	if kind == Robot {
		return NewRobot()
	}
	return NewHumanoid()
}

func buildPreset(name string, kind ModelKind, bones []boneSpec, parts []partSpec, metalness float32) Model {
	ids := make(map[string]string, len(bones))
	for _, b := range bones {
		ids[b.name] = uuid.NewString()
	}

	skelBones := make([]skeleton.Bone, 0, len(bones))
	for _, b := range bones {
		skelBones = append(skelBones, skeleton.Bone{
			ID:       ids[b.name],
			Name:     b.name,
			Position: b.pos,
			Length:   b.length,
			ParentID: ids[b.parent],
		})
	}
	skel := skeleton.NewSkeleton(skeleton.WithName(name), skeleton.WithBones(skelBones...))
	pose := skel.Snapshot()

	meshParts := make([]mesh.Part, 0, len(parts))
	for _, p := range parts {
		t := mesh.DefaultTransform()
		if w, ok := pose.World(ids[p.anchor]); ok {
			t.Position = w.Position.Add(p.offset)
		}
		meshParts = append(meshParts, mesh.Part{
			ID:        uuid.NewString(),
			Name:      p.name,
			Geometry:  p.geometry,
			Material:  mesh.Material{Color: p.color, Metalness: metalness, Roughness: 0.6},
			Transform: t,
		})
	}

	return NewModel(
		WithName(name),
		WithKind(kind),
		WithSkeleton(skel),
		WithParts(mesh.NewPartSet(mesh.WithParts(meshParts...))),
	)
}
