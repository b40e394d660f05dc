package animator

import (
	"github.com/Carmen-Shannon/oxy-rig/engine/model"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// pose is a named keyed pose: rotation and position deltas from rest, by bone name.
type pose struct {
	time float32
	rot  map[string]mgl32.Vec3
	pos  map[string]mgl32.Vec3
}

var walkPoses = []pose{
	{time: 0, rot: map[string]mgl32.Vec3{
		"L_Hip": {0.4, 0, 0}, "R_Hip": {-0.4, 0, 0}, "R_Knee": {0.3, 0, 0},
		"Spine2": {0, 0.1, 0}, "L_Shoulder": {-0.3, 0, 0}, "R_Shoulder": {0.3, 0, 0},
	}},
	{time: 0.25, rot: map[string]mgl32.Vec3{
		"R_Knee": {0.6, 0, 0},
	}, pos: map[string]mgl32.Vec3{"Hips": {0, -0.02, 0}}},
	{time: 0.5, rot: map[string]mgl32.Vec3{
		"L_Hip": {-0.4, 0, 0}, "R_Hip": {0.4, 0, 0}, "L_Knee": {0.3, 0, 0},
		"Spine2": {0, -0.1, 0}, "L_Shoulder": {0.3, 0, 0}, "R_Shoulder": {-0.3, 0, 0},
	}},
	{time: 0.75, rot: map[string]mgl32.Vec3{
		"L_Knee": {0.6, 0, 0},
	}, pos: map[string]mgl32.Vec3{"Hips": {0, -0.02, 0}}},
	{time: 1.0, rot: map[string]mgl32.Vec3{
		"L_Hip": {0.4, 0, 0}, "R_Hip": {-0.4, 0, 0}, "R_Knee": {0.3, 0, 0},
		"Spine2": {0, 0.1, 0}, "L_Shoulder": {-0.3, 0, 0}, "R_Shoulder": {0.3, 0, 0},
	}},
}

var humanoidIdlePoses = []pose{
	{time: 0},
	{time: 1.0, rot: map[string]mgl32.Vec3{"Spine2": {0.05, 0, 0}, "Head": {-0.05, 0, 0}},
		pos: map[string]mgl32.Vec3{"Hips": {0, -0.01, 0}}},
	{time: 2.0},
}

var wavePoses = []pose{
	{time: 0, rot: map[string]mgl32.Vec3{"R_Shoulder": {0, 0, -1.3}, "R_Elbow": {0, 0, -0.6}}},
	{time: 0.3, rot: map[string]mgl32.Vec3{"R_Shoulder": {0, 0, -1.3}, "R_Elbow": {0, 0, -0.2}}},
	{time: 0.6, rot: map[string]mgl32.Vec3{"R_Shoulder": {0, 0, -1.3}, "R_Elbow": {0, 0, -0.6}}},
	{time: 0.9, rot: map[string]mgl32.Vec3{"R_Shoulder": {0, 0, -1.3}, "R_Elbow": {0, 0, -0.2}}},
	{time: 1.2, rot: map[string]mgl32.Vec3{"R_Shoulder": {0, 0, -1.3}, "R_Elbow": {0, 0, -0.6}}},
}

var robotWalkPoses = []pose{
	{time: 0, rot: map[string]mgl32.Vec3{
		"L_LegMount": {0.35, 0, 0}, "R_LegMount": {-0.35, 0, 0}, "R_LegJoint": {0.25, 0, 0},
		"L_ArmMount": {0, 0, 0.1}, "R_ArmMount": {0, 0, -0.1}, "Turret": {0, 0.05, 0},
	}},
	{time: 0.3, rot: map[string]mgl32.Vec3{"R_LegJoint": {0.5, 0, 0}},
		pos: map[string]mgl32.Vec3{"Base": {0, -0.03, 0}}},
	{time: 0.6, rot: map[string]mgl32.Vec3{
		"L_LegMount": {-0.35, 0, 0}, "R_LegMount": {0.35, 0, 0}, "L_LegJoint": {0.25, 0, 0},
		"L_ArmMount": {0, 0, -0.1}, "R_ArmMount": {0, 0, 0.1}, "Turret": {0, -0.05, 0},
	}},
	{time: 0.9, rot: map[string]mgl32.Vec3{"L_LegJoint": {0.5, 0, 0}},
		pos: map[string]mgl32.Vec3{"Base": {0, -0.03, 0}}},
	{time: 1.2, rot: map[string]mgl32.Vec3{
		"L_LegMount": {0.35, 0, 0}, "R_LegMount": {-0.35, 0, 0}, "R_LegJoint": {0.25, 0, 0},
		"L_ArmMount": {0, 0, 0.1}, "R_ArmMount": {0, 0, -0.1}, "Turret": {0, 0.05, 0},
	}},
}

var robotIdlePoses = []pose{
	{time: 0},
	{time: 1.5, pos: map[string]mgl32.Vec3{"Chassis": {0, 0.02, 0}}},
	{time: 3.0},
}

var scanPoses = []pose{
	{time: 0},
	{time: 1.0, rot: map[string]mgl32.Vec3{"Turret": {0, 0.8, 0}, "Sensor": {0.2, 0, 0}}},
	{time: 2.0},
	{time: 3.0, rot: map[string]mgl32.Vec3{"Turret": {0, -0.8, 0}, "Sensor": {-0.2, 0, 0}}},
	{time: 4.0},
}

// WalkCycle builds the humanoid five-key walk. Every keyframe is a full snapshot of all bones.
//
// Parameters:
//   - bones: the rest pose of the skeleton the clip is authored for
//
// Returns:
//   - *Clip: a 1 second looping clip
//   - error: an error if the clip fails validation
func WalkCycle(bones []skeleton.Bone) (*Clip, error) {
	return snapshotClip("walk", 1.0, true, bones, walkPoses)
}

// Wave builds a humanoid right-arm wave.
func Wave(bones []skeleton.Bone) (*Clip, error) {
	return snapshotClip("wave", 1.2, true, bones, wavePoses)
}

// Idle builds a subtle looping idle for either kind.
func Idle(kind model.ModelKind, bones []skeleton.Bone) (*Clip, error) {
	if kind == model.Robot {
		return snapshotClip("idle", 3.0, true, bones, robotIdlePoses)
	}
	return snapshotClip("idle", 2.0, true, bones, humanoidIdlePoses)
}

// RobotWalk builds the robot stomp cycle.
func RobotWalk(bones []skeleton.Bone) (*Clip, error) {
	return snapshotClip("walk", 1.2, true, bones, robotWalkPoses)
}

// Scan builds a robot turret sweep.
func Scan(bones []skeleton.Bone) (*Clip, error) {
	return snapshotClip("scan", 4.0, true, bones, scanPoses)
}

// PresetsFor builds every preset clip available for a kind.
//
// Parameters:
//   - kind: the model kind
//   - bones: the rest pose of the skeleton
//
// Returns:
//   - []*Clip: the clips, walk first
//   - error: the first clip construction error
func PresetsFor(kind model.ModelKind, bones []skeleton.Bone) ([]*Clip, error) {
	var builders []func() (*Clip, error)
	if kind == model.Robot {
		builders = []func() (*Clip, error){
			func() (*Clip, error) { return RobotWalk(bones) },
			func() (*Clip, error) { return Idle(kind, bones) },
			func() (*Clip, error) { return Scan(bones) },
		}
	} else {
		builders = []func() (*Clip, error){
			func() (*Clip, error) { return WalkCycle(bones) },
			func() (*Clip, error) { return Idle(kind, bones) },
			func() (*Clip, error) { return Wave(bones) },
		}
	}

	clips := make([]*Clip, 0, len(builders))
	for _, build := range builders {
		c, err := build()
		if err != nil {
			return nil, err
		}
		clips = append(clips, c)
	}
	return clips, nil
}

// snapshotClip turns name-keyed deltas into keyframes that cover every bone, so interpolation never
// has to invent values for bones a pose leaves out.
func snapshotClip(name string, duration float32, loop bool, bones []skeleton.Bone, poses []pose) (*Clip, error) {
	keyframes := make([]Keyframe, 0, len(poses))
	for _, p := range poses {
		snap := make(map[string]skeleton.BonePose, len(bones))
		for _, b := range bones {
			snap[b.ID] = skeleton.BonePose{
				Position: b.Position.Add(p.pos[b.Name]),
				Rotation: b.Rotation.Add(p.rot[b.Name]),
			}
		}
		keyframes = append(keyframes, Keyframe{Time: p.time, Bones: snap})
	}
	return NewClip(name, duration, loop, keyframes...)
}
