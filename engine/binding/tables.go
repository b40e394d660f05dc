package binding

import "github.com/Carmen-Shannon/oxy-rig/engine/model"

// HairPrefix marks humanoid parts that always follow the Head bone in addition to their table entry.
const HairPrefix = "Hair_"

// HeadBone is the bone every humanoid hair part is bound to.
const HeadBone = "Head"

var humanoidTable = Table{
	"Head":       {Bone: "Head", Weight: 1.0},
	"Hair_Back":  {Bone: "Neck", Weight: 0.3},
	"Neck":       {Bone: "Neck", Weight: 1.0},
	"Torso":      {Bone: "Spine1", Weight: 0.6, Secondary: "Spine2", SecondaryWeight: 0.4},
	"Pelvis":     {Bone: "Hips", Weight: 1.0},
	"L_UpperArm": {Bone: "L_Shoulder", Weight: 1.0},
	"L_Forearm":  {Bone: "L_Elbow", Weight: 0.8, Secondary: "L_Shoulder", SecondaryWeight: 0.2},
	"L_Hand":     {Bone: "L_Wrist", Weight: 1.0},
	"R_UpperArm": {Bone: "R_Shoulder", Weight: 1.0},
	"R_Forearm":  {Bone: "R_Elbow", Weight: 0.8, Secondary: "R_Shoulder", SecondaryWeight: 0.2},
	"R_Hand":     {Bone: "R_Wrist", Weight: 1.0},
	"L_Thigh":    {Bone: "L_Hip", Weight: 1.0},
	"L_Shin":     {Bone: "L_Knee", Weight: 0.8, Secondary: "L_Hip", SecondaryWeight: 0.2},
	"L_Foot":     {Bone: "L_Ankle", Weight: 1.0},
	"R_Thigh":    {Bone: "R_Hip", Weight: 1.0},
	"R_Shin":     {Bone: "R_Knee", Weight: 0.8, Secondary: "R_Hip", SecondaryWeight: 0.2},
	"R_Foot":     {Bone: "R_Ankle", Weight: 1.0},
}

var robotTable = Table{
	"Chassis": {Bone: "Chassis", Weight: 1.0},
	"Core":    {Bone: "Chassis", Weight: 0.7, Secondary: "Base", SecondaryWeight: 0.3},
	"Turret":  {Bone: "Turret", Weight: 1.0},
	"Sensor":  {Bone: "Sensor", Weight: 1.0},
	"Antenna": {Bone: "Sensor", Weight: 0.6, Secondary: "Turret", SecondaryWeight: 0.4},
	"L_Arm":   {Bone: "L_ArmMount", Weight: 0.5, Secondary: "L_ArmJoint", SecondaryWeight: 0.5},
	"L_Claw":  {Bone: "L_Claw", Weight: 1.0},
	"R_Arm":   {Bone: "R_ArmMount", Weight: 0.5, Secondary: "R_ArmJoint", SecondaryWeight: 0.5},
	"R_Claw":  {Bone: "R_Claw", Weight: 1.0},
	"L_Leg":   {Bone: "L_LegMount", Weight: 0.6, Secondary: "L_LegJoint", SecondaryWeight: 0.4},
	"L_Foot":  {Bone: "L_FootPad", Weight: 1.0},
	"R_Leg":   {Bone: "R_LegMount", Weight: 0.6, Secondary: "R_LegJoint", SecondaryWeight: 0.4},
	"R_Foot":  {Bone: "R_FootPad", Weight: 1.0},
}

// HumanoidTable returns a copy of the humanoid binding table.
func HumanoidTable() Table {
	return humanoidTable.clone()
}

// RobotTable returns a copy of the robot binding table.
func RobotTable() Table {
	return robotTable.clone()
}

// TableFor returns a copy of the binding table for a model kind.
//
// Parameters:
//   - kind: the model kind
//
// Returns:
//   - Table: the humanoid table for Humanoid, the robot table otherwise
func TableFor(kind model.ModelKind) Table {
	if kind == model.Humanoid {
		return HumanoidTable()
	}
	return RobotTable()
}

func (t Table) clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
