// package scene contains the per-scene session: one model with its bindings, clips, player and IK solver,
// advanced one tick at a time in pose, then skin, then render order.
package scene

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-rig/engine/animator"
	"github.com/Carmen-Shannon/oxy-rig/engine/binding"
	"github.com/Carmen-Shannon/oxy-rig/engine/ik"
	"github.com/Carmen-Shannon/oxy-rig/engine/model"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
	"github.com/Carmen-Shannon/oxy-rig/engine/skinning"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Scene owns one model together with everything that animates it: the binding table, a set of named
// clips, a dedicated animation player and an IK solver.
// All mutation goes through a single writer lock, so a tick never observes a half-applied edit.
// Thread-safe for concurrent access.
type Scene interface {
	// ID returns the scene's unique identifier.
	ID() string

	// Name returns the scene's display name.
	Name() string

	// SetName sets the scene's display name.
	SetName(name string)

	// Active returns whether the engine ticks this scene.
	Active() bool

	// SetActive sets whether the engine ticks this scene.
	SetActive(active bool)

	// Model returns the scene's model.
	Model() model.Model

	// LoadPreset replaces the model with the procedural preset for kind, replaces the clips with the
	// kind's preset clips and drops all bindings.
	//
	// Parameters:
	//   - kind: the preset to load
	//
	// Returns:
	//   - error: an error if a preset clip fails to build
	LoadPreset(kind model.ModelKind) error

	// Bind regenerates every binding from the model's rest pose, normalizes them and replaces the
	// current set in one step.
	//
	// Returns:
	//   - binding.ValidationResult: the validation of the new bindings
	Bind() binding.ValidationResult

	// Bindings returns a copy of the current bindings.
	Bindings() []binding.Binding

	// SetBindings replaces the current bindings without regenerating them.
	SetBindings(bindings []binding.Binding)

	// AddClip validates a clip and registers it under its name, replacing any clip with the same name.
	//
	// Parameters:
	//   - clip: the clip to add
	//
	// Returns:
	//   - error: ErrNilClip or the clip's validation error
	AddClip(clip *animator.Clip) error

	// Clip returns the clip registered under name.
	Clip(name string) (*animator.Clip, bool)

	// Clips returns every registered clip sorted by name.
	Clips() []*animator.Clip

	// Player returns the scene's animation player.
	Player() animator.Player

	// Play starts the named clip from time 0.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - error: ErrClipNotFound if no clip has that name
	Play(name string) error

	// Pause pauses playback, keeping the current pose.
	Pause()

	// Resume resumes paused playback.
	Resume()

	// Stop stops playback and returns every bone to its rest transform.
	Stop()

	// Tick advances the player by deltaTime, writes the sampled pose into the skeleton, skins the parts
	// and returns the resulting frame.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	//
	// Returns:
	//   - Frame: the frame to present
	Tick(deltaTime float32) Frame

	// Frame builds a frame from the current state without advancing time.
	Frame() Frame

	// SolveIK runs the IK solver on a chain of bone IDs ordered root to tip.
	// The solved pose stays in effect (and parts follow it) until the next Stop or Play.
	//
	// Parameters:
	//   - chain: bone IDs from root to end effector
	//   - target: the target position
	//
	// Returns:
	//   - ik.Result: the solver result
	SolveIK(chain []string, target mgl32.Vec3) ik.Result

	// SelectBone marks a bone as selected for visualization. An empty ID clears the selection.
	//
	// Returns:
	//   - bool: false if the bone does not exist (the selection is unchanged)
	SelectBone(id string) bool

	// Selected returns the selected bone ID, or empty.
	Selected() string

	// SetBoneLocal edits the rest transform of a bone.
	//
	// Returns:
	//   - bool: false if the bone does not exist
	SetBoneLocal(id string, position, rotation mgl32.Vec3) bool

	// DeleteBone removes a bone, its descendants and every binding that references them.
	// Clip entries for removed bones stay in the clips and are ignored when applied.
	//
	// Returns:
	//   - []string: the removed bone IDs, or nil if id does not exist
	DeleteBone(id string) []string

	// DeletePart removes a mesh part, its descendants and every binding that references them.
	//
	// Returns:
	//   - []string: the removed part IDs, or nil if id does not exist
	DeletePart(id string) []string

	// Clear removes every bone, part, binding and clip and stops playback.
	Clear()

	// Diagnostics reports dangling parents, unresolved table references and binding validation errors.
	Diagnostics() Diagnostics
}

// scene implements the Scene interface.
type scene struct {
	mu     *sync.RWMutex
	logger zerolog.Logger

	id     string
	name   string
	active bool

	m        model.Model
	bindings []binding.Binding
	clips    map[string]*animator.Clip

	player animator.Player
	solver ik.Solver

	selected string
	posed    bool // live pose was written by IK outside of playback
}

var _ Scene = &scene{}

// NewScene creates a new active Scene around a model and applies the provided options.
// A nil model is replaced by an empty one.
//
// Parameters:
//   - name: the scene's display name
//   - m: the model to animate
//   - options: functional options for scene configuration
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, m model.Model, options ...SceneBuilderOption) Scene {
	if m == nil {
		m = model.NewModel(model.WithName(name))
	}

	s := &scene{
		mu:     &sync.RWMutex{},
		logger: zerolog.Nop(),
		id:     uuid.NewString(),
		name:   name,
		active: true,
		m:      m,
		clips:  make(map[string]*animator.Clip),
	}

	for _, option := range options {
		option(s)
	}

	s.logger = s.logger.With().Str("scene", s.name).Logger()
	if s.player == nil {
		s.player = animator.NewPlayer(animator.WithLogger(s.logger))
	}
	if s.solver == nil {
		s.solver = ik.NewSolver(ik.WithLogger(s.logger))
	}

	return s
}

func (s *scene) ID() string {
	return s.id
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Model() model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m
}

func (s *scene) LoadPreset(kind model.ModelKind) error {
	m := model.NewPreset(kind)
	clips, err := animator.PresetsFor(kind, m.Skeleton().RestBones())
	if err != nil {
		return fmt.Errorf("failed to build %s preset clips: %w", kind, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.player.Play(nil)
	s.m = m
	s.bindings = nil
	s.selected = ""
	s.posed = false
	s.clips = make(map[string]*animator.Clip, len(clips))
	for _, c := range clips {
		s.clips[c.Name] = c
	}

	s.logger.Info().Str("kind", kind.String()).Int("bones", m.Skeleton().Len()).Int("parts", m.Parts().Len()).Msg("preset loaded")
	return nil
}

func (s *scene) Bind() binding.ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := s.m.Parts().Parts()
	bones := s.m.Skeleton().RestBones()

	s.bindings = binding.Normalize(binding.Generate(s.m.Kind(), parts, bones))
	res := binding.Validate(s.bindings, parts, bones)

	ev := s.logger.Info()
	if !res.Valid {
		ev = s.logger.Warn().Strs("errors", res.Errors)
	}
	ev.Int("bindings", len(s.bindings)).Str("kind", s.m.Kind().String()).Msg("bindings generated")
	return res
}

func (s *scene) Bindings() []binding.Binding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]binding.Binding, len(s.bindings))
	copy(out, s.bindings)
	return out
}

func (s *scene) SetBindings(bindings []binding.Binding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings = append([]binding.Binding(nil), bindings...)
}

func (s *scene) AddClip(clip *animator.Clip) error {
	if clip == nil {
		return ErrNilClip
	}
	if err := clip.Validate(); err != nil {
		return fmt.Errorf("failed to add clip %q: %w", clip.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clips[clip.Name] = clip
	return nil
}

func (s *scene) Clip(name string) (*animator.Clip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clips[name]
	return c, ok
}

func (s *scene) Clips() []*animator.Clip {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*animator.Clip, 0, len(s.clips))
	for _, c := range s.clips {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *scene) Player() animator.Player {
	return s.player
}

func (s *scene) Play(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clip, ok := s.clips[name]
	if !ok {
		return fmt.Errorf("failed to play %q: %w", name, ErrClipNotFound)
	}
	s.posed = false
	s.player.Play(clip)
	return nil
}

func (s *scene) Pause() {
	s.player.Pause()
}

func (s *scene) Resume() {
	s.player.Resume()
}

func (s *scene) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Stop()
	s.m.Skeleton().ResetPose()
	s.posed = false
}

func (s *scene) Tick(deltaTime float32) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pose := s.player.Update(deltaTime); pose != nil {
		s.m.Skeleton().ApplyPose(pose)
	}
	return s.frame()
}

func (s *scene) Frame() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame()
}

// frame must be called with the lock held.
func (s *scene) frame() Frame {
	pose := s.m.Skeleton().Snapshot()
	parts := s.m.Parts().Parts()

	f := Frame{
		SceneID:  s.id,
		Time:     s.player.Time(),
		Animated: s.posed || s.player.State() != animator.Stopped,
		Parts:    make(map[string]skinning.PartTransform, len(parts)),
		Bones:    s.gizmos(pose),
		Selected: s.selected,
	}

	var skinned map[string]skinning.PartTransform
	if f.Animated {
		skinned = skinning.Evaluate(s.m.Kind(), pose, parts, s.bindings)
	}
	for _, p := range parts {
		if t, ok := skinned[p.ID]; ok {
			f.Parts[p.ID] = t
			continue
		}
		f.Parts[p.ID] = skinning.Rest(p)
	}
	return f
}

func (s *scene) gizmos(pose *skeleton.Pose) []BoneGizmo {
	bones := pose.Bones()
	out := make([]BoneGizmo, 0, len(bones))
	for _, b := range bones {
		w, _ := pose.World(b.ID)
		state := GizmoDefault
		if _, ok := pose.Bone(b.ParentID); !ok || b.IsRoot() {
			state = GizmoRoot
		}
		if b.ID == s.selected {
			state = GizmoSelected
		}
		out = append(out, BoneGizmo{
			ID:       b.ID,
			Name:     b.Name,
			ParentID: b.ParentID,
			Position: w.Position,
			Rotation: w.Rotation,
			Length:   b.Length,
			State:    state,
		})
	}
	return out
}

func (s *scene) SolveIK(chain []string, target mgl32.Vec3) ik.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.solver.Solve(s.m.Skeleton(), chain, target)
	if res.Iterations > 0 {
		s.posed = true
	}
	return res
}

func (s *scene) SelectBone(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if _, ok := s.m.Skeleton().Bone(id); !ok {
			return false
		}
	}
	s.selected = id
	return true
}

func (s *scene) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

func (s *scene) SetBoneLocal(id string, position, rotation mgl32.Vec3) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Skeleton().SetLocal(id, position, rotation)
}

func (s *scene) DeleteBone(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.m.Skeleton().Remove(id)
	if removed == nil {
		return nil
	}

	before := len(s.bindings)
	s.bindings = binding.WithoutBones(s.bindings, removed...)
	for _, rid := range removed {
		if rid == s.selected {
			s.selected = ""
		}
	}

	s.logger.Debug().Str("bone", id).Int("removed", len(removed)).Int("bindings_dropped", before-len(s.bindings)).Msg("bone deleted")
	return removed
}

func (s *scene) DeletePart(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.m.Parts().Remove(id)
	if removed == nil {
		return nil
	}

	before := len(s.bindings)
	s.bindings = binding.WithoutParts(s.bindings, removed...)

	s.logger.Debug().Str("part", id).Int("removed", len(removed)).Int("bindings_dropped", before-len(s.bindings)).Msg("part deleted")
	return removed
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.player.Play(nil)
	s.m.Skeleton().Clear()
	s.m.Parts().Clear()
	s.bindings = nil
	s.clips = make(map[string]*animator.Clip)
	s.selected = ""
	s.posed = false
}

func (s *scene) Diagnostics() Diagnostics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parts := s.m.Parts().Parts()
	bones := s.m.Skeleton().Bones()
	return Diagnostics{
		Dangling:   s.m.Skeleton().Dangling(),
		Unresolved: binding.FindUnresolved(s.m.Kind(), parts, bones),
		Validation: binding.Validate(s.bindings, parts, bones),
	}
}
