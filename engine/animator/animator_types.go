package animator

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
)

var (
	// ErrInvalidDuration is returned for clips whose duration is not positive.
	ErrInvalidDuration = errors.New("clip duration must be positive")
	// ErrKeyframeOutOfRange is returned when a keyframe time lies outside [0, duration].
	ErrKeyframeOutOfRange = errors.New("keyframe time outside clip duration")
	// ErrNoKeyframes is returned for clips without keyframes.
	ErrNoKeyframes = errors.New("clip has no keyframes")
)

// State is the playback state of a Player.
type State uint8

const (
	// Stopped players hold time 0 and produce no poses.
	Stopped State = iota
	// Playing players advance time on every Update.
	Playing
	// Paused players keep their time and produce no poses until resumed.
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Keyframe is a timestamped pose snapshot. Bones maps bone IDs to local transforms;
// it does not have to cover every bone.
type Keyframe struct {
	ID    string                       `yaml:"id"`
	Time  float32                      `yaml:"time"`
	Bones map[string]skeleton.BonePose `yaml:"bones"`
}

// Clip is a named, timed sequence of keyframes. Keyframes are kept sorted by time.
type Clip struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Duration  float32    `yaml:"duration"`
	Loop      bool       `yaml:"loop"`
	Keyframes []Keyframe `yaml:"keyframes"`
}
