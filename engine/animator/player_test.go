package animator

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoSecondClip(t *testing.T, loop bool) *Clip {
	t.Helper()
	c, err := NewClip("two", 2, loop,
		kf(0, map[string]skeleton.BonePose{"a": at(0)}),
		kf(1, map[string]skeleton.BonePose{"a": at(4)}),
		kf(2, map[string]skeleton.BonePose{"a": at(0)}),
	)
	require.NoError(t, err)
	return c
}

func TestPlayerStateMachine(t *testing.T) {
	p := NewPlayer()
	assert.Equal(t, Stopped, p.State())
	assert.Nil(t, p.Update(0.1), "no clip")

	clip := twoSecondClip(t, true)
	p.Play(clip)
	assert.Equal(t, Playing, p.State())
	assert.Same(t, clip, p.Clip())

	p.Update(0.5)
	p.Pause()
	assert.Equal(t, Paused, p.State())
	assert.Nil(t, p.Update(0.5))
	assert.Equal(t, float32(0.5), p.Time(), "pause keeps time")

	p.Resume()
	assert.Equal(t, Playing, p.State())
	assert.NotNil(t, p.Update(0.25))
	assert.Equal(t, float32(0.75), p.Time())

	p.Stop()
	assert.Equal(t, Stopped, p.State())
	assert.Zero(t, p.Time())
	p.Resume()
	assert.Equal(t, Stopped, p.State(), "resume only leaves pause")

	p.Play(clip)
	p.Update(1)
	p.Play(clip)
	assert.Zero(t, p.Time(), "play resets time")

	p.Play(nil)
	assert.Equal(t, Stopped, p.State())
}

func TestPlayerLoopWraparound(t *testing.T) {
	clip := twoSecondClip(t, true)

	a := NewPlayer()
	a.Play(clip)
	long := a.Update(2.5)

	b := NewPlayer()
	b.Play(clip)
	short := b.Update(0.5)

	assert.Equal(t, short, long)
	assert.InDelta(t, 0.5, a.Time(), 1e-6)
	assert.Equal(t, Playing, a.State())
}

func TestPlayerNonLoopClampsAndPauses(t *testing.T) {
	p := NewPlayer()
	p.Play(twoSecondClip(t, false))

	pose := p.Update(3)
	assert.Equal(t, float32(2), p.Time())
	assert.Equal(t, Paused, p.State())
	assert.Equal(t, at(0), pose["a"])
	assert.Nil(t, p.Update(0.1))
}

func TestPlayerSpeed(t *testing.T) {
	p := NewPlayer(WithSpeed(2))
	assert.Equal(t, float32(2), p.Speed())
	p.Play(twoSecondClip(t, true))

	pose := p.Update(0.5)
	assert.Equal(t, float32(1), p.Time())
	assert.Equal(t, at(4), pose["a"])

	p.SetSpeed(-1)
	p.Update(1.5)
	assert.InDelta(t, 1.5, p.Time(), 1e-6, "negative time wraps for looping clips")
}

func TestPlayerReverseNonLoopStopsAtZero(t *testing.T) {
	p := NewPlayer(WithSpeed(-1))
	p.Play(twoSecondClip(t, false))
	p.Seek(0.5)
	p.Update(1)
	assert.Zero(t, p.Time())
	assert.Equal(t, Paused, p.State())
}

func TestPlayerSeekAndPose(t *testing.T) {
	p := NewPlayer()
	assert.Nil(t, p.Pose())
	p.Seek(1)
	assert.Zero(t, p.Time(), "seek without a clip is ignored")

	p.Play(twoSecondClip(t, false))
	p.Pause()
	p.Seek(1)
	assert.Equal(t, at(4), p.Pose()["a"])
	assert.Equal(t, Paused, p.State())

	p.Seek(5)
	assert.Equal(t, float32(2), p.Time())

	p.Play(twoSecondClip(t, true))
	p.Seek(5)
	assert.Equal(t, float32(1), p.Time())
}

func TestPlayerZeroDurationLoopKeepsTimeFinite(t *testing.T) {
	p := NewPlayer()
	p.Play(&Clip{Name: "empty", Loop: true, Keyframes: []Keyframe{kf(0, map[string]skeleton.BonePose{"a": at(1)})}})

	pose := p.Update(0.5)
	assert.Equal(t, float32(0), p.Time())
	require.Contains(t, pose, "a")
	assert.Equal(t, at(1), pose["a"])

	p.Seek(3)
	assert.Equal(t, float32(0), p.Time())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "playing", Playing.String())
	assert.Equal(t, "paused", Paused.String())
	assert.Equal(t, "unknown", State(9).String())
}
