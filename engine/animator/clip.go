// package animator contains keyframe clips and the animation player that samples them over time.
package animator

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
	"github.com/google/uuid"
)

// NewClip creates a clip, assigns missing IDs, sorts the keyframes by time and validates the result.
//
// Parameters:
//   - name: the clip name
//   - duration: the clip length in seconds (must be > 0)
//   - loop: whether playback wraps at the end
//   - keyframes: the keyframes in any order
//
// Returns:
//   - *Clip: the new clip
//   - error: ErrInvalidDuration, ErrNoKeyframes or ErrKeyframeOutOfRange
func NewClip(name string, duration float32, loop bool, keyframes ...Keyframe) (*Clip, error) {
	c := &Clip{
		ID:        uuid.NewString(),
		Name:      name,
		Duration:  duration,
		Loop:      loop,
		Keyframes: keyframes,
	}
	for i := range c.Keyframes {
		if c.Keyframes[i].ID == "" {
			c.Keyframes[i].ID = uuid.NewString()
		}
	}
	c.Sort()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("clip %q: %w", name, err)
	}
	return c, nil
}

// Sort orders the keyframes by time. Keyframes with equal times keep their relative order.
func (c *Clip) Sort() {
	sort.SliceStable(c.Keyframes, func(i, j int) bool {
		return c.Keyframes[i].Time < c.Keyframes[j].Time
	})
}

// Validate checks the duration, that there is at least one keyframe, that every keyframe lies
// within [0, duration] and that the keyframes are sorted.
//
// Returns:
//   - error: nil if the clip can be played
func (c *Clip) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("%w: %g", ErrInvalidDuration, c.Duration)
	}
	if len(c.Keyframes) == 0 {
		return ErrNoKeyframes
	}
	for i, kf := range c.Keyframes {
		if kf.Time < 0 || kf.Time > c.Duration {
			return fmt.Errorf("%w: keyframe %d at %gs, duration %gs", ErrKeyframeOutOfRange, i, kf.Time, c.Duration)
		}
		if i > 0 && kf.Time < c.Keyframes[i-1].Time {
			return fmt.Errorf("keyframe %d at %gs is before keyframe %d at %gs", i, kf.Time, i-1, c.Keyframes[i-1].Time)
		}
	}
	return nil
}

// BoneIDs returns every bone ID referenced by any keyframe, sorted.
func (c *Clip) BoneIDs() []string {
	seen := make(map[string]struct{})
	for _, kf := range c.Keyframes {
		for id := range kf.Bones {
			seen[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Sample interpolates the clip at time t.
// The bracketing pair is the last keyframe with Time <= t and the one after it. Before the first
// keyframe the first keyframe is used for both bounds; at or past the last keyframe the last one is held.
// Position and Euler rotation are interpolated linearly per component. Only bones present in both
// bracketing keyframes appear in the result.
//
// Parameters:
//   - t: the time in seconds
//
// Returns:
//   - map[string]skeleton.BonePose: local transforms keyed by bone ID, or nil for a clip without keyframes
func (c *Clip) Sample(t float32) map[string]skeleton.BonePose {
	if len(c.Keyframes) == 0 {
		return nil
	}

	prev, next := c.bracket(t)
	a, b := c.Keyframes[prev], c.Keyframes[next]

	var f float32
	if span := b.Time - a.Time; span > 0 {
		f = (t - a.Time) / span
	}

	out := make(map[string]skeleton.BonePose, len(a.Bones))
	for id, pa := range a.Bones {
		pb, ok := b.Bones[id]
		if !ok {
			continue
		}
		out[id] = skeleton.BonePose{
			Position: common.LerpVec3(pa.Position, pb.Position, f),
			Rotation: common.LerpVec3(pa.Rotation, pb.Rotation, f),
		}
	}
	return out
}

// bracket returns the indices of the keyframes surrounding t.
func (c *Clip) bracket(t float32) (int, int) {
	n := len(c.Keyframes)
	i := sort.Search(n, func(i int) bool { return c.Keyframes[i].Time > t }) - 1
	switch {
	case i < 0:
		return 0, 0
	case i == n-1:
		return i, i
	default:
		return i, i + 1
	}
}
