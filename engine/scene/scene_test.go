package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rig/engine/animator"
	"github.com/Carmen-Shannon/oxy-rig/engine/binding"
	"github.com/Carmen-Shannon/oxy-rig/engine/mesh"
	"github.com/Carmen-Shannon/oxy-rig/engine/model"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
	"github.com/Carmen-Shannon/oxy-rig/engine/skinning"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func presetScene(t *testing.T, kind model.ModelKind) Scene {
	t.Helper()
	s := NewScene("test", nil)
	require.NoError(t, s.LoadPreset(kind))
	return s
}

func boneID(t *testing.T, s Scene, name string) string {
	t.Helper()
	b, ok := s.Model().Skeleton().BoneByName(name)
	require.True(t, ok, "bone %s", name)
	return b.ID
}

func partID(t *testing.T, s Scene, name string) string {
	t.Helper()
	p, ok := s.Model().Parts().PartByName(name)
	require.True(t, ok, "part %s", name)
	return p.ID
}

func TestNewSceneDefaults(t *testing.T) {
	s := NewScene("empty", nil)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, "empty", s.Name())
	assert.True(t, s.Active())
	assert.NotNil(t, s.Model())
	assert.NotNil(t, s.Player())
	assert.Empty(t, s.Clips())

	s = NewScene("fixed", nil, WithID("scene-1"), WithActive(false))
	assert.Equal(t, "scene-1", s.ID())
	assert.False(t, s.Active())
	s.SetActive(true)
	s.SetName("renamed")
	assert.True(t, s.Active())
	assert.Equal(t, "renamed", s.Name())
}

func TestLoadPresetRegistersClips(t *testing.T) {
	s := presetScene(t, model.Humanoid)
	assert.Equal(t, model.Humanoid, s.Model().Kind())

	names := make([]string, 0, 3)
	for _, c := range s.Clips() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"idle", "walk", "wave"}, names)

	require.NoError(t, s.LoadPreset(model.Robot))
	_, ok := s.Clip("scan")
	assert.True(t, ok)
	assert.Empty(t, s.Bindings())
}

func TestBindHumanoidPreset(t *testing.T) {
	s := presetScene(t, model.Humanoid)

	res := s.Bind()
	require.True(t, res.Valid, "%v", res.Errors)

	bindings := s.Bindings()
	assert.Len(t, bindings, 24)

	sums := make(map[string]float32)
	for _, b := range bindings {
		sums[b.PartID] += b.Weight
	}
	for part, sum := range sums {
		assert.InDelta(t, 1, sum, 1e-5, "part %s", part)
	}
	assert.True(t, s.Diagnostics().Healthy())
}

func TestTickPosesThenSkins(t *testing.T) {
	s := presetScene(t, model.Humanoid)
	s.Bind()

	idle := s.Frame()
	assert.False(t, idle.Animated)
	for _, p := range s.Model().Parts().Parts() {
		assert.Equal(t, skinning.Rest(p), idle.Parts[p.ID])
	}

	require.NoError(t, s.Play("walk"))
	f := s.Tick(0.1)
	assert.True(t, f.Animated)
	assert.Equal(t, s.ID(), f.SceneID)
	assert.InDelta(t, 0.1, f.Time, 1e-6)
	assert.Len(t, f.Parts, s.Model().Parts().Len())
	assert.Len(t, f.Bones, s.Model().Skeleton().Len())

	// Single-binding humanoid parts snap to their bone and take its rotation.
	hip, ok := s.Model().Skeleton().WorldTransform(boneID(t, s, "L_Hip"))
	require.True(t, ok)
	thigh := f.Parts[partID(t, s, "L_Thigh")]
	assert.Less(t, thigh.Position.Sub(hip.Position).Len(), float32(1e-5))
	assert.True(t, thigh.Rotation.OrientationEqualThreshold(hip.Rotation, 1e-4))
}

func TestStopResetsPose(t *testing.T) {
	s := presetScene(t, model.Robot)
	s.Bind()
	require.NoError(t, s.Play("scan"))
	s.Tick(0.7)

	turret, _ := s.Model().Skeleton().Bone(boneID(t, s, "Turret"))
	assert.NotZero(t, turret.Rotation.Y())

	s.Stop()
	assert.Equal(t, animator.Stopped, s.Player().State())
	assert.Equal(t, s.Model().Skeleton().RestBones(), s.Model().Skeleton().Bones())
	assert.False(t, s.Frame().Animated)
}

func TestPauseHoldsPose(t *testing.T) {
	s := presetScene(t, model.Robot)
	require.NoError(t, s.Play("walk"))
	s.Tick(0.2)

	s.Pause()
	before := s.Model().Skeleton().Bones()
	f := s.Tick(0.5)
	assert.True(t, f.Animated)
	assert.InDelta(t, 0.2, f.Time, 1e-6)
	assert.Equal(t, before, s.Model().Skeleton().Bones())

	s.Resume()
	assert.InDelta(t, 0.3, s.Tick(0.1).Time, 1e-6)
}

func TestPlayUnknownClip(t *testing.T) {
	s := presetScene(t, model.Humanoid)
	err := s.Play("moonwalk")
	assert.ErrorIs(t, err, ErrClipNotFound)
	assert.Equal(t, animator.Stopped, s.Player().State())
}

func TestAddClip(t *testing.T) {
	s := NewScene("clips", nil)
	assert.ErrorIs(t, s.AddClip(nil), ErrNilClip)
	assert.ErrorIs(t, s.AddClip(&animator.Clip{Name: "bad"}), animator.ErrInvalidDuration)

	c, err := animator.NewClip("nod", 1, true, animator.Keyframe{Time: 0}, animator.Keyframe{Time: 1})
	require.NoError(t, err)
	require.NoError(t, s.AddClip(c))

	got, ok := s.Clip("nod")
	require.True(t, ok)
	assert.Same(t, c, got)

	s = NewScene("builder", nil, WithClips(c, nil, &animator.Clip{Name: "bad"}))
	assert.Len(t, s.Clips(), 1)
}

func TestDeleteBoneCascadesDuringPlayback(t *testing.T) {
	s := presetScene(t, model.Humanoid)
	s.Bind()
	require.NoError(t, s.Play("walk"))
	s.Tick(0.3)

	hip := boneID(t, s, "L_Hip")
	knee := boneID(t, s, "L_Knee")
	ankle := boneID(t, s, "L_Ankle")
	require.True(t, s.SelectBone(knee))

	removed := s.DeleteBone(hip)
	assert.ElementsMatch(t, []string{hip, knee, ankle}, removed)
	assert.Equal(t, hip, removed[0])
	assert.Empty(t, s.Selected(), "selection on a removed bone is cleared")

	for _, b := range s.Bindings() {
		assert.NotContains(t, removed, b.BoneID)
	}
	assert.Len(t, s.Bindings(), 20)

	var f Frame
	assert.NotPanics(t, func() {
		for range 10 {
			f = s.Tick(0.1)
		}
	})
	assert.True(t, f.Animated)
	assert.Len(t, f.Bones, s.Model().Skeleton().Len())

	thigh, _ := s.Model().Parts().PartByName("L_Thigh")
	assert.Equal(t, skinning.Rest(thigh), f.Parts[thigh.ID], "unbound part stays at rest")
	assert.True(t, s.Diagnostics().Validation.Valid)

	assert.Nil(t, s.DeleteBone(hip))
}

func TestDeletePartCascades(t *testing.T) {
	parts := mesh.NewPartSet(mesh.WithParts(
		mesh.Part{ID: "arm", Name: "Arm", Transform: mesh.DefaultTransform()},
		mesh.Part{ID: "hand", Name: "Hand", ParentID: "arm", Transform: mesh.DefaultTransform()},
		mesh.Part{ID: "body", Name: "Body", Transform: mesh.DefaultTransform()},
	))
	skel := skeleton.NewSkeleton(skeleton.WithBones(skeleton.Bone{ID: "b"}))
	m := model.NewModel(model.WithKind(model.Robot), model.WithSkeleton(skel), model.WithParts(parts))

	s := NewScene("parts", m, WithBindings(
		binding.Binding{PartID: "arm", BoneID: "b", Weight: 1},
		binding.Binding{PartID: "hand", BoneID: "b", Weight: 1},
		binding.Binding{PartID: "body", BoneID: "b", Weight: 1},
	))

	assert.Equal(t, []string{"arm", "hand"}, s.DeletePart("arm"))
	require.Len(t, s.Bindings(), 1)
	assert.Equal(t, "body", s.Bindings()[0].PartID)
	assert.Nil(t, s.DeletePart("arm"))
}

func TestSolveIKPosesParts(t *testing.T) {
	skel := skeleton.NewSkeleton(skeleton.WithBones(
		skeleton.Bone{ID: "root", Name: "Root"},
		skeleton.Bone{ID: "tip", Name: "Tip", ParentID: "root", Position: mgl32.Vec3{0, 1, 0}},
	))
	parts := mesh.NewPartSet(mesh.WithParts(mesh.Part{ID: "claw", Name: "Claw", Transform: mesh.DefaultTransform()}))
	m := model.NewModel(model.WithKind(model.Robot), model.WithSkeleton(skel), model.WithParts(parts))

	s := NewScene("ik", m, WithBindings(binding.Binding{PartID: "claw", BoneID: "tip", Weight: 1}))

	res := s.SolveIK([]string{"root", "tip"}, mgl32.Vec3{1, 0, 0})
	require.True(t, res.Converged)

	f := s.Frame()
	assert.True(t, f.Animated)
	assert.Less(t, f.Parts["claw"].Position.Sub(mgl32.Vec3{1, 0, 0}).Len(), float32(0.01))

	s.Stop()
	assert.False(t, s.Frame().Animated)
	tip, _ := skel.WorldTransform("tip")
	assert.Less(t, tip.Position.Sub(mgl32.Vec3{0, 1, 0}).Len(), float32(1e-5))
}

func TestSelectionAndGizmos(t *testing.T) {
	skel := skeleton.NewSkeleton(skeleton.WithBones(
		skeleton.Bone{ID: "root"},
		skeleton.Bone{ID: "child", ParentID: "root", Position: mgl32.Vec3{0, 1, 0}},
		skeleton.Bone{ID: "orphan", ParentID: "gone"},
	))
	s := NewScene("gizmos", model.NewModel(model.WithSkeleton(skel)))

	assert.False(t, s.SelectBone("missing"))
	require.True(t, s.SelectBone("child"))

	f := s.Frame()
	require.Len(t, f.Bones, 3)
	assert.Equal(t, "child", f.Selected)
	assert.Equal(t, GizmoRoot, f.Bones[0].State)
	assert.Equal(t, GizmoSelected, f.Bones[1].State)
	assert.Equal(t, GizmoRoot, f.Bones[2].State, "dangling parent draws as a root")
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, f.Bones[1].Position)

	assert.True(t, s.SelectBone(""))
	assert.Empty(t, s.Selected())
	assert.Equal(t, "selected", GizmoSelected.String())
}

func TestSetBoneLocalKeepsChildLocals(t *testing.T) {
	s := presetScene(t, model.Humanoid)
	spine := boneID(t, s, "Spine")
	neck := boneID(t, s, "Neck")
	before, _ := s.Model().Skeleton().Bone(neck)

	require.True(t, s.SetBoneLocal(spine, mgl32.Vec3{0, 0.2, 0}, mgl32.Vec3{0.1, 0, 0}))
	after, _ := s.Model().Skeleton().Bone(neck)
	assert.Equal(t, before.Position, after.Position)
	assert.Equal(t, before.Rotation, after.Rotation)
	assert.False(t, s.SetBoneLocal("missing", mgl32.Vec3{}, mgl32.Vec3{}))
}

func TestDiagnostics(t *testing.T) {
	skel := skeleton.NewSkeleton(skeleton.WithBones(
		skeleton.Bone{ID: "head", Name: "Head"},
		skeleton.Bone{ID: "lost", Name: "Lost", ParentID: "nowhere"},
	))
	parts := mesh.NewPartSet(mesh.WithParts(
		mesh.Part{ID: "h", Name: "Head"},
		mesh.Part{ID: "t", Name: "Torso"},
	))
	s := NewScene("diag", model.NewModel(model.WithSkeleton(skel), model.WithParts(parts)),
		WithBindings(binding.Binding{ID: "x", PartID: "h", BoneID: "ghost", Weight: 2}))

	d := s.Diagnostics()
	assert.False(t, d.Healthy())
	assert.Equal(t, []string{"lost"}, d.Dangling)
	require.Len(t, d.Unresolved, 2, "torso refers to Spine1 and Spine2")
	assert.Equal(t, "Spine1", d.Unresolved[0].BoneName)
	assert.False(t, d.Validation.Valid)
	assert.Len(t, d.Validation.Errors, 2)
}

func TestClear(t *testing.T) {
	s := presetScene(t, model.Humanoid)
	s.Bind()
	require.NoError(t, s.Play("walk"))
	s.Tick(0.1)

	s.Clear()
	assert.Zero(t, s.Model().Skeleton().Len())
	assert.Zero(t, s.Model().Parts().Len())
	assert.Empty(t, s.Bindings())
	assert.Empty(t, s.Clips())
	assert.Equal(t, animator.Stopped, s.Player().State())

	f := s.Tick(0.1)
	assert.Empty(t, f.Parts)
	assert.Empty(t, f.Bones)
}
