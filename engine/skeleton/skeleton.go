// package skeleton contains the bone hierarchy: bones linked by parent IDs, their rest and live poses,
// and world transform composition.
package skeleton

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Skeleton is a forest of bones linked only by parent IDs.
// Child lists are derived on demand from the parent links and never stored.
// Each bone has a rest transform (edited by the user) and a live transform (written by playback and IK).
type Skeleton interface {
	// Name returns the skeleton's display name.
	Name() string

	// Add inserts bones into the skeleton. Either all bones are added or none are.
	// A parent ID that does not resolve yet is allowed and treated as a root until it does.
	//
	// Parameters:
	//   - bones: the bones to add
	//
	// Returns:
	//   - error: ErrEmptyBoneID, ErrBoneExists or ErrCycle wrapped with the offending bone ID
	Add(bones ...Bone) error

	// Bone returns the live state of a bone by ID.
	Bone(id string) (Bone, bool)

	// BoneByName returns the first bone (in insertion order) with the given name.
	BoneByName(name string) (Bone, bool)

	// Bones returns the live state of every bone in insertion order.
	Bones() []Bone

	// RestBones returns the rest state of every bone in insertion order.
	RestBones() []Bone

	// Len returns the number of bones.
	Len() int

	// Children returns the IDs of the direct children of a bone, in insertion order.
	Children(id string) []string

	// Roots returns the IDs of bones with no parent or with a parent that does not resolve.
	Roots() []string

	// Dangling returns the IDs of bones whose declared parent is not part of the skeleton.
	Dangling() []string

	// SetLocal edits the rest (and live) local transform of a bone.
	// Children keep their own local transforms.
	//
	// Parameters:
	//   - id: the bone to edit
	//   - position: the new local position
	//   - rotation: the new local Euler rotation
	//
	// Returns:
	//   - bool: false if the bone does not exist
	SetLocal(id string, position, rotation mgl32.Vec3) bool

	// SetParent re-links a bone under a new parent. An empty parent ID makes the bone a root.
	//
	// Parameters:
	//   - id: the bone to move
	//   - parentID: the new parent
	//
	// Returns:
	//   - error: ErrBoneNotFound if id does not exist, ErrCycle if parentID is id or one of its descendants
	SetParent(id, parentID string) error

	// ApplyPose writes local transforms into the live pose. IDs that are not part of the skeleton are ignored.
	//
	// Parameters:
	//   - pose: local transforms keyed by bone ID
	//
	// Returns:
	//   - int: the number of bones that were updated
	ApplyPose(pose map[string]BonePose) int

	// ResetPose restores every live transform to its rest value.
	ResetPose()

	// BakePose makes the current live pose the new rest pose.
	BakePose()

	// Remove deletes a bone and all of its descendants.
	//
	// Parameters:
	//   - id: the bone to delete
	//
	// Returns:
	//   - []string: the removed IDs, starting with id, or nil if id does not exist
	Remove(id string) []string

	// Clear removes every bone.
	Clear()

	// WorldTransform composes the live local transforms from the root down to the bone.
	//
	// Parameters:
	//   - id: the bone to resolve
	//
	// Returns:
	//   - WorldTransform: parentWorld * local, with dangling parents treated as identity
	//   - bool: false if the bone does not exist
	WorldTransform(id string) (WorldTransform, bool)

	// Snapshot copies the live pose into a Pose that memoizes world transforms for one evaluation pass.
	Snapshot() *Pose
}

// skeleton implements the Skeleton interface.
type skeleton struct {
	mu   *sync.RWMutex
	name string

	order []string
	rest  map[string]Bone
	live  map[string]Bone
}

var _ Skeleton = &skeleton{}

// NewSkeleton creates a new empty Skeleton and applies the provided options.
//
// Parameters:
//   - options: functional options for skeleton configuration
//
// Returns:
//   - Skeleton: the newly created skeleton
func NewSkeleton(options ...SkeletonBuilderOption) Skeleton {
	s := &skeleton{
		mu:   &sync.RWMutex{},
		rest: make(map[string]Bone),
		live: make(map[string]Bone),
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

func (s *skeleton) Name() string {
	return s.name
}

func (s *skeleton) Add(bones ...Bone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(bones)
}

// add validates the whole batch against the current bones before committing any of it.
// Must be called with the write lock held.
func (s *skeleton) add(bones []Bone) error {
	parents := make(map[string]string, len(s.live)+len(bones))
	for id, b := range s.live {
		parents[id] = b.ParentID
	}

	for _, b := range bones {
		if b.ID == "" {
			return fmt.Errorf("add bone %q: %w", b.Name, ErrEmptyBoneID)
		}
		if _, ok := parents[b.ID]; ok {
			return fmt.Errorf("add bone %q: %w", b.ID, ErrBoneExists)
		}
		if reachesAncestor(parents, b.ParentID, b.ID) {
			return fmt.Errorf("add bone %q: %w", b.ID, ErrCycle)
		}
		parents[b.ID] = b.ParentID
	}

	for _, b := range bones {
		s.order = append(s.order, b.ID)
		s.rest[b.ID] = b
		s.live[b.ID] = b
	}
	return nil
}

// reachesAncestor walks parent links starting at from and reports whether target is reached.
func reachesAncestor(parents map[string]string, from, target string) bool {
	cur := from
	for steps := 0; cur != "" && steps <= len(parents); steps++ {
		if cur == target {
			return true
		}
		next, ok := parents[cur]
		if !ok {
			return false
		}
		cur = next
	}
	return false
}

func (s *skeleton) Bone(id string) (Bone, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.live[id]
	return b, ok
}

func (s *skeleton) BoneByName(name string) (Bone, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if b := s.live[id]; b.Name == name {
			return b, true
		}
	}
	return Bone{}, false
}

func (s *skeleton) Bones() []Bone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.live)
}

func (s *skeleton) RestBones() []Bone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.rest)
}

func (s *skeleton) collect(src map[string]Bone) []Bone {
	out := make([]Bone, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, src[id])
	}
	return out
}

func (s *skeleton) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *skeleton) Children(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.childIndex()[id]
}

// childIndex derives the parent -> children index from the parent links.
// Must be called with the lock held.
func (s *skeleton) childIndex() map[string][]string {
	index := make(map[string][]string, len(s.order))
	for _, id := range s.order {
		if p := s.live[id].ParentID; p != "" {
			index[p] = append(index[p], id)
		}
	}
	return index
}

func (s *skeleton) Roots() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var roots []string
	for _, id := range s.order {
		p := s.live[id].ParentID
		if _, ok := s.live[p]; p == "" || !ok {
			roots = append(roots, id)
		}
	}
	return roots
}

func (s *skeleton) Dangling() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, id := range s.order {
		p := s.live[id].ParentID
		if _, ok := s.live[p]; p != "" && !ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *skeleton) SetLocal(id string, position, rotation mgl32.Vec3) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.rest[id]
	if !ok {
		return false
	}
	b.Position, b.Rotation = position, rotation
	s.rest[id] = b

	l := s.live[id]
	l.Position, l.Rotation = position, rotation
	s.live[id] = l
	return true
}

func (s *skeleton) SetParent(id, parentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.live[id]; !ok {
		return fmt.Errorf("set parent of %q: %w", id, ErrBoneNotFound)
	}

	parents := make(map[string]string, len(s.live))
	for bid, b := range s.live {
		parents[bid] = b.ParentID
	}
	if reachesAncestor(parents, parentID, id) {
		return fmt.Errorf("set parent of %q to %q: %w", id, parentID, ErrCycle)
	}

	for _, m := range []map[string]Bone{s.rest, s.live} {
		b := m[id]
		b.ParentID = parentID
		m[id] = b
	}
	return nil
}

func (s *skeleton) ApplyPose(pose map[string]BonePose) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := 0
	for id, p := range pose {
		b, ok := s.live[id]
		if !ok {
			continue
		}
		b.Position, b.Rotation = p.Position, p.Rotation
		s.live[id] = b
		applied++
	}
	return applied
}

func (s *skeleton) ResetPose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range s.rest {
		s.live[id] = b
	}
}

func (s *skeleton) BakePose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range s.live {
		s.rest[id] = b
	}
}

func (s *skeleton) Remove(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.live[id]; !ok {
		return nil
	}

	index := s.childIndex()
	removed := []string{id}
	for i := 0; i < len(removed); i++ {
		removed = append(removed, index[removed[i]]...)
	}

	gone := make(map[string]struct{}, len(removed))
	for _, rid := range removed {
		gone[rid] = struct{}{}
		delete(s.rest, rid)
		delete(s.live, rid)
	}

	kept := s.order[:0]
	for _, oid := range s.order {
		if _, ok := gone[oid]; !ok {
			kept = append(kept, oid)
		}
	}
	s.order = kept

	return removed
}

func (s *skeleton) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.rest = make(map[string]Bone)
	s.live = make(map[string]Bone)
}

func (s *skeleton) WorldTransform(id string) (WorldTransform, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.live[id]
	if !ok {
		return WorldTransform{}, false
	}

	chain := []Bone{b}
	for len(chain) <= len(s.live) {
		parent, ok := s.live[chain[len(chain)-1].ParentID]
		if !ok {
			break
		}
		chain = append(chain, parent)
	}

	w := identityWorld
	for i := len(chain) - 1; i >= 0; i-- {
		c := chain[i]
		w.Matrix = w.Matrix.Mul4(common.LocalMatrix(c.Position, c.Rotation))
		w.Rotation = w.Rotation.Mul(common.EulerToQuat(c.Rotation)).Normalize()
	}
	w.Position = w.Matrix.Col(3).Vec3()
	return w, true
}

func (s *skeleton) Snapshot() *Pose {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NewPose(s.collect(s.live))
}
