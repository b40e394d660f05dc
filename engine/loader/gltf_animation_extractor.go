package loader

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/animator"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// timeEpsilon merges channel timestamps closer than this into one keyframe.
const timeEpsilon = 1e-4

// gltfTrack is one sampled property of one joint.
type gltfTrack struct {
	times  []float32
	values [][4]float32 // xyz for translation, xyzw for rotation
	step   bool
}

// sample evaluates the track at t, clamping outside its time range.
func (t *gltfTrack) sample(at float32) [4]float32 {
	n := len(t.times)
	if at <= t.times[0] {
		return t.values[0]
	}
	if at >= t.times[n-1] {
		return t.values[n-1]
	}

	i := sort.Search(n, func(i int) bool { return t.times[i] > at }) - 1
	if t.step {
		return t.values[i]
	}
	span := t.times[i+1] - t.times[i]
	if span <= 0 {
		return t.values[i]
	}
	f := (at - t.times[i]) / span
	a, b := t.values[i], t.values[i+1]
	return [4]float32{
		a[0] + (b[0]-a[0])*f,
		a[1] + (b[1]-a[1])*f,
		a[2] + (b[2]-a[2])*f,
		a[3] + (b[3]-a[3])*f,
	}
}

// gltfJointTracks holds the tracks of one joint.
type gltfJointTracks struct {
	translation *gltfTrack
	rotation    *gltfTrack
}

// extractClip resamples one animation into full-snapshot keyframes over the given joints.
// Every distinct channel timestamp becomes a keyframe holding every joint; joints without a channel
// keep their rest transform. Rotations are slerped in quaternion space and stored as Euler angles.
// Channels targeting non-joint nodes, scale and morph weights are ignored.
//
// Parameters:
//   - p: the parser holding the document and its buffers
//   - animIndex: the animation to extract
//   - joints: the joints produced by extractSkeleton
//   - loop: the Loop flag of the resulting clip
//
// Returns:
//   - *animator.Clip: the clip, or nil if the animation has no usable channel or zero length
//   - error: error if accessor data cannot be read
func extractClip(p *gltfParser, animIndex int, joints []gltfJoint, loop bool) (*animator.Clip, error) {
	doc := p.document
	if animIndex < 0 || animIndex >= len(doc.Animations) {
		return nil, fmt.Errorf("animation index %d out of range", animIndex)
	}
	anim := &doc.Animations[animIndex]

	name := anim.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", animIndex)
	}

	jointByNode := make(map[int]int, len(joints))
	for i, j := range joints {
		jointByNode[j.node] = i
	}

	tracks := make(map[int]*gltfJointTracks)
	var times []float32
	for i := range anim.Channels {
		ch := &anim.Channels[i]
		if ch.Target.Node == nil {
			continue
		}
		jointIdx, ok := jointByNode[*ch.Target.Node]
		if !ok {
			continue
		}
		if ch.Target.Path != gltfAnimPathTranslation && ch.Target.Path != gltfAnimPathRotation {
			continue
		}
		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return nil, fmt.Errorf("animation %q channel %d: invalid sampler index %d", name, i, ch.Sampler)
		}

		track, err := readTrack(p, &anim.Samplers[ch.Sampler], ch.Target.Path)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: %w", name, i, err)
		}
		if track == nil {
			continue
		}

		jt, ok := tracks[jointIdx]
		if !ok {
			jt = &gltfJointTracks{}
			tracks[jointIdx] = jt
		}
		if ch.Target.Path == gltfAnimPathTranslation {
			jt.translation = track
		} else {
			jt.rotation = track
		}
		times = append(times, track.times...)
	}

	times = mergeTimes(times)
	if len(tracks) == 0 || len(times) == 0 || times[len(times)-1] <= 0 {
		return nil, nil
	}
	duration := times[len(times)-1]

	keyframes := make([]animator.Keyframe, 0, len(times))
	prevRot := make(map[int]mgl32.Vec3, len(tracks))
	for _, t := range times {
		kf := animator.Keyframe{Time: t, Bones: make(map[string]skeleton.BonePose, len(joints))}
		for i, j := range joints {
			pose := skeleton.BonePose{Position: j.bone.Position, Rotation: j.bone.Rotation}
			if jt, ok := tracks[i]; ok {
				if jt.translation != nil {
					v := jt.translation.sample(t)
					pose.Position = mgl32.Vec3{v[0], v[1], v[2]}
				}
				if jt.rotation != nil {
					rot := common.QuatToEuler(sampleRotation(jt.rotation, t))
					if prev, ok := prevRot[i]; ok {
						rot = unwrapEuler(rot, prev)
					}
					prevRot[i] = rot
					pose.Rotation = rot
				}
			}
			kf.Bones[j.bone.ID] = pose
		}
		keyframes = append(keyframes, kf)
	}

	return animator.NewClip(name, duration, loop, keyframes...)
}

// unwrapEuler shifts each angle of e by whole turns so it lies within π of prev.
// Keyframe rotations are interpolated per component, so neighbours must not jump across ±π.
func unwrapEuler(e, prev mgl32.Vec3) mgl32.Vec3 {
	for i := range e {
		for e[i]-prev[i] > math32.Pi {
			e[i] -= 2 * math32.Pi
		}
		for e[i]-prev[i] < -math32.Pi {
			e[i] += 2 * math32.Pi
		}
	}
	return e
}

// readTrack reads a sampler's input and output accessors.
// CUBICSPLINE outputs store (in-tangent, value, out-tangent) triplets; only the values are kept.
func readTrack(p *gltfParser, sampler *gltfAnimSampler, path string) (*gltfTrack, error) {
	times, err := p.readFloats(sampler.Input, gltfAccessorTypeScalar)
	if err != nil {
		return nil, fmt.Errorf("failed to read timestamps: %w", err)
	}
	if len(times) == 0 {
		return nil, nil
	}

	accessorType, width := gltfAccessorTypeVec3, 3
	if path == gltfAnimPathRotation {
		accessorType, width = gltfAccessorTypeVec4, 4
	}
	flat, err := p.readFloats(sampler.Output, accessorType)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s values: %w", path, err)
	}

	perKey, first := 1, 0
	if sampler.Interpolation == gltfInterpolationCubicSpline {
		perKey, first = 3, 1
	}

	count := min(len(times), len(flat)/(width*perKey))
	track := &gltfTrack{
		times:  times[:count],
		values: make([][4]float32, count),
		step:   sampler.Interpolation == gltfInterpolationStep,
	}
	for i := range count {
		base := (i*perKey + first) * width
		copy(track.values[i][:width], flat[base:base+width])
	}
	if count == 0 {
		return nil, nil
	}
	return track, nil
}

// sampleRotation slerps between the bracketing rotation keys.
func sampleRotation(track *gltfTrack, at float32) mgl32.Quat {
	n := len(track.times)
	if n == 1 || at <= track.times[0] || track.step {
		return gltfQuat(track.sample(at)).Normalize()
	}
	if at >= track.times[n-1] {
		return gltfQuat(track.values[n-1]).Normalize()
	}

	i := sort.Search(n, func(i int) bool { return track.times[i] > at }) - 1
	span := track.times[i+1] - track.times[i]
	if span <= 0 {
		return gltfQuat(track.values[i]).Normalize()
	}
	return mgl32.QuatSlerp(gltfQuat(track.values[i]), gltfQuat(track.values[i+1]), (at-track.times[i])/span)
}

// mergeTimes sorts timestamps, drops negatives and collapses near-duplicates.
func mergeTimes(times []float32) []float32 {
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	out := times[:0]
	for _, t := range times {
		if t < 0 {
			continue
		}
		if len(out) > 0 && math32.Abs(t-out[len(out)-1]) < timeEpsilon {
			continue
		}
		out = append(out, t)
	}
	return out
}
