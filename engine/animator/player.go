package animator

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
	"github.com/chewxy/math32"
	"github.com/rs/zerolog"
)

// Player advances one clip's play-head and samples it.
// Each scene owns its own Player; there is no shared playback state.
type Player interface {
	// Play loads a clip, resets the time to 0 and starts playing.
	// Passing nil stops the player.
	//
	// Parameters:
	//   - clip: the clip to play
	Play(clip *Clip)

	// Pause stops advancing time without resetting it. No-op unless playing.
	Pause()

	// Resume continues a paused clip. No-op unless paused.
	Resume()

	// Stop halts playback and resets the time to 0. The clip stays loaded.
	Stop()

	// Update advances the play-head by deltaTime * speed and samples the clip.
	// Looping clips wrap modulo the duration; other clips clamp to the end and pause there.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	//
	// Returns:
	//   - map[string]skeleton.BonePose: the pose at the new time, or nil when not playing or no clip is loaded
	Update(deltaTime float32) map[string]skeleton.BonePose

	// Seek moves the play-head without changing the state. Looping clips wrap, others clamp.
	//
	// Parameters:
	//   - t: the target time in seconds
	Seek(t float32)

	// Pose samples the clip at the current time without advancing it.
	//
	// Returns:
	//   - map[string]skeleton.BonePose: the pose, or nil when no clip is loaded
	Pose() map[string]skeleton.BonePose

	// SetSpeed sets the playback speed multiplier (1 = normal, negative plays backwards).
	SetSpeed(speed float32)

	// Speed returns the playback speed multiplier.
	Speed() float32

	// Time returns the current play-head time in seconds.
	Time() float32

	// State returns the playback state.
	State() State

	// Clip returns the loaded clip, or nil.
	Clip() *Clip
}

// player implements the Player interface.
type player struct {
	mu     *sync.Mutex
	logger zerolog.Logger

	clip  *Clip
	time  float32
	speed float32
	state State
}

var _ Player = &player{}

// NewPlayer creates a stopped Player with speed 1 and applies the provided options.
//
// Parameters:
//   - options: functional options for player configuration
//
// Returns:
//   - Player: the newly created player
func NewPlayer(options ...PlayerBuilderOption) Player {
	p := &player{
		mu:     &sync.Mutex{},
		logger: zerolog.Nop(),
		speed:  1,
		state:  Stopped,
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

func (p *player) Play(clip *Clip) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clip = clip
	p.time = 0
	if clip == nil {
		p.setState(Stopped)
		return
	}
	p.setState(Playing)
}

func (p *player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Playing {
		p.setState(Paused)
	}
}

func (p *player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Paused && p.clip != nil {
		p.setState(Playing)
	}
}

func (p *player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.time = 0
	p.setState(Stopped)
}

func (p *player) Update(deltaTime float32) map[string]skeleton.BonePose {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Playing || p.clip == nil {
		return nil
	}

	p.time += deltaTime * p.speed
	duration := p.clip.Duration

	switch {
	case p.clip.Loop:
		p.time = wrap(p.time, duration)
	case p.time >= duration:
		p.time = duration
		p.setState(Paused)
	case p.time <= 0 && p.speed < 0:
		p.time = 0
		p.setState(Paused)
	}

	return p.clip.Sample(p.time)
}

func (p *player) Seek(t float32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.clip == nil {
		return
	}
	if p.clip.Loop {
		p.time = wrap(t, p.clip.Duration)
		return
	}
	p.time = max(0, min(t, p.clip.Duration))
}

func (p *player) Pose() map[string]skeleton.BonePose {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.clip == nil {
		return nil
	}
	return p.clip.Sample(p.time)
}

func (p *player) SetSpeed(speed float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speed = speed
}

func (p *player) Speed() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

func (p *player) Time() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.time
}

func (p *player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *player) Clip() *Clip {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clip
}

// setState must be called with the lock held.
func (p *player) setState(s State) {
	if s == p.state {
		return
	}
	ev := p.logger.Debug().Str("from", p.state.String()).Str("to", s.String()).Float32("time", p.time)
	if p.clip != nil {
		ev = ev.Str("clip", p.clip.Name)
	}
	ev.Msg("playback state changed")
	p.state = s
}

// wrap maps t into [0, duration).
func wrap(t, duration float32) float32 {
	if !(duration > 0) {
		return 0
	}
	t = math32.Mod(t, duration)
	if t < 0 {
		t += duration
	}
	return t
}
