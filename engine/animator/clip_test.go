package animator

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rig/engine/model"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kf(t float32, bones map[string]skeleton.BonePose) Keyframe {
	return Keyframe{Time: t, Bones: bones}
}

func at(x float32) skeleton.BonePose {
	return skeleton.BonePose{Position: mgl32.Vec3{x, 0, 0}, Rotation: mgl32.Vec3{0, 0, x / 10}}
}

func TestNewClipSortsKeyframes(t *testing.T) {
	c, err := NewClip("c", 2, false,
		kf(2, map[string]skeleton.BonePose{"a": at(2)}),
		kf(0, map[string]skeleton.BonePose{"a": at(0)}),
		kf(1, map[string]skeleton.BonePose{"a": at(1)}),
	)
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	require.Len(t, c.Keyframes, 3)
	for i, want := range []float32{0, 1, 2} {
		assert.Equal(t, want, c.Keyframes[i].Time)
		assert.NotEmpty(t, c.Keyframes[i].ID)
	}
}

func TestNewClipValidation(t *testing.T) {
	_, err := NewClip("zero", 0, true, kf(0, nil))
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = NewClip("empty", 1, true)
	assert.ErrorIs(t, err, ErrNoKeyframes)

	_, err = NewClip("late", 1, true, kf(0, nil), kf(1.5, nil))
	assert.ErrorIs(t, err, ErrKeyframeOutOfRange)

	c := &Clip{Duration: 1, Keyframes: []Keyframe{kf(0.5, nil), kf(0.2, nil)}}
	assert.Error(t, c.Validate())
	c.Sort()
	assert.NoError(t, c.Validate())
}

func TestSampleInterpolatesLinearly(t *testing.T) {
	c, err := NewClip("c", 2, false,
		kf(0, map[string]skeleton.BonePose{"a": at(0), "b": at(4)}),
		kf(2, map[string]skeleton.BonePose{"a": at(10), "b": at(8)}),
	)
	require.NoError(t, err)

	got := c.Sample(0.5)
	assert.InDelta(t, 2.5, got["a"].Position.X(), 1e-6)
	assert.InDelta(t, 0.25, got["a"].Rotation.Z(), 1e-6)
	assert.InDelta(t, 5, got["b"].Position.X(), 1e-6)
}

func TestSampleAtKeyframeReturnsKeyframeValues(t *testing.T) {
	k1 := map[string]skeleton.BonePose{"a": at(1.3), "b": at(-0.7)}
	c, err := NewClip("c", 3, true,
		kf(0, map[string]skeleton.BonePose{"a": at(0), "b": at(0)}),
		kf(1.5, k1),
		kf(3, map[string]skeleton.BonePose{"a": at(9), "b": at(9)}),
	)
	require.NoError(t, err)

	assert.Equal(t, k1, c.Sample(1.5))
	assert.Equal(t, c.Keyframes[0].Bones, c.Sample(0))
	assert.Equal(t, c.Keyframes[2].Bones, c.Sample(3), "the last keyframe is held")
}

func TestSampleOmitsBonesMissingFromEitherKeyframe(t *testing.T) {
	c, err := NewClip("c", 1, false,
		kf(0, map[string]skeleton.BonePose{"a": at(0), "only-first": at(1)}),
		kf(1, map[string]skeleton.BonePose{"a": at(1), "only-second": at(1)}),
	)
	require.NoError(t, err)

	got := c.Sample(0.5)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "a")
}

func TestSampleBeforeFirstKeyframe(t *testing.T) {
	c, err := NewClip("c", 2, false,
		kf(1, map[string]skeleton.BonePose{"a": at(5)}),
		kf(2, map[string]skeleton.BonePose{"a": at(7)}),
	)
	require.NoError(t, err)
	assert.Equal(t, at(5), c.Sample(0.25)["a"])
}

func TestSampleDuplicateTimesUseLaterKeyframe(t *testing.T) {
	c := &Clip{Duration: 1, Keyframes: []Keyframe{
		kf(0, map[string]skeleton.BonePose{"a": at(0)}),
		kf(0.5, map[string]skeleton.BonePose{"a": at(1)}),
		kf(0.5, map[string]skeleton.BonePose{"a": at(2)}),
		kf(1, map[string]skeleton.BonePose{"a": at(3)}),
	}}
	// The last keyframe at 0.5 brackets with the one at 1.0.
	assert.Equal(t, at(2), c.Sample(0.5)["a"])
	assert.Nil(t, (&Clip{Duration: 1}).Sample(0))
}

func TestBoneIDs(t *testing.T) {
	c := &Clip{Keyframes: []Keyframe{
		kf(0, map[string]skeleton.BonePose{"b": {}, "a": {}}),
		kf(1, map[string]skeleton.BonePose{"c": {}}),
	}}
	assert.Equal(t, []string{"a", "b", "c"}, c.BoneIDs())
}

func TestPresetsAreFullSnapshots(t *testing.T) {
	for _, kind := range []model.ModelKind{model.Humanoid, model.Robot} {
		t.Run(kind.String(), func(t *testing.T) {
			m := model.NewPreset(kind)
			bones := m.Skeleton().Bones()

			clips, err := PresetsFor(kind, bones)
			require.NoError(t, err)
			require.Len(t, clips, 3)
			assert.Equal(t, "walk", clips[0].Name)

			for _, c := range clips {
				assert.NoError(t, c.Validate())
				assert.True(t, c.Loop)
				for _, k := range c.Keyframes {
					assert.Len(t, k.Bones, len(bones), "clip %s keyframe %g", c.Name, k.Time)
				}
			}
		})
	}
}

func TestWalkCycleMovesNamedBones(t *testing.T) {
	m := model.NewHumanoid()
	c, err := WalkCycle(m.Skeleton().Bones())
	require.NoError(t, err)
	require.Len(t, c.Keyframes, 5)

	hip, _ := m.Skeleton().BoneByName("L_Hip")
	spine, _ := m.Skeleton().BoneByName("Spine")
	first := c.Keyframes[0].Bones
	assert.Equal(t, float32(0.4), first[hip.ID].Rotation.X())
	assert.Equal(t, spine.Rotation, first[spine.ID].Rotation, "untouched bones hold their rest value")
	assert.Equal(t, c.Keyframes[0].Bones, c.Keyframes[4].Bones, "the cycle closes")
}
