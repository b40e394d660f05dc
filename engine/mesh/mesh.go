// package mesh contains the mesh part records of a model and the part hierarchy.
package mesh

import (
	"fmt"
	"sync"
)

// PartSet holds the mesh parts of a model.
// Like the skeleton, the part tree stores only parent IDs; child lists are derived on demand.
type PartSet interface {
	// Add inserts parts. Either all parts are added or none are.
	//
	// Parameters:
	//   - parts: the parts to add
	//
	// Returns:
	//   - error: ErrEmptyPartID, ErrPartExists or ErrCycle wrapped with the offending part ID
	Add(parts ...Part) error

	// Part returns a part by ID.
	Part(id string) (Part, bool)

	// PartByName returns the first part (in insertion order) with the given name.
	PartByName(name string) (Part, bool)

	// Parts returns every part in insertion order.
	Parts() []Part

	// Names returns the name of every part in insertion order.
	Names() []string

	// Children returns the IDs of the direct children of a part.
	Children(id string) []string

	// Roots returns the IDs of parts with no parent or a parent that does not resolve.
	Roots() []string

	// SetTransform replaces the rest transform of a part.
	//
	// Returns:
	//   - bool: false if the part does not exist
	SetTransform(id string, t Transform) bool

	// Remove deletes a part and all of its descendants.
	//
	// Returns:
	//   - []string: the removed IDs starting with id, or nil if id does not exist
	Remove(id string) []string

	// Clear removes every part.
	Clear()

	// Len returns the number of parts.
	Len() int
}

// partSet implements the PartSet interface.
type partSet struct {
	mu    *sync.RWMutex
	order []string
	parts map[string]Part
}

var _ PartSet = &partSet{}

// NewPartSet creates an empty PartSet and applies the provided options.
//
// Parameters:
//   - options: functional options for part set configuration
//
// Returns:
//   - PartSet: the newly created part set
func NewPartSet(options ...PartSetBuilderOption) PartSet {
	ps := &partSet{
		mu:    &sync.RWMutex{},
		parts: make(map[string]Part),
	}

	for _, opt := range options {
		opt(ps)
	}

	return ps
}

func (ps *partSet) Add(parts ...Part) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.add(parts)
}

func (ps *partSet) add(parts []Part) error {
	parents := make(map[string]string, len(ps.parts)+len(parts))
	for id, p := range ps.parts {
		parents[id] = p.ParentID
	}

	for _, p := range parts {
		if p.ID == "" {
			return fmt.Errorf("add part %q: %w", p.Name, ErrEmptyPartID)
		}
		if _, ok := parents[p.ID]; ok {
			return fmt.Errorf("add part %q: %w", p.ID, ErrPartExists)
		}
		for cur, steps := p.ParentID, 0; cur != "" && steps <= len(parents); steps++ {
			if cur == p.ID {
				return fmt.Errorf("add part %q: %w", p.ID, ErrCycle)
			}
			cur = parents[cur]
		}
		parents[p.ID] = p.ParentID
	}

	for _, p := range parts {
		ps.order = append(ps.order, p.ID)
		ps.parts[p.ID] = p
	}
	return nil
}

func (ps *partSet) Part(id string) (Part, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	p, ok := ps.parts[id]
	return p, ok
}

func (ps *partSet) PartByName(name string) (Part, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	for _, id := range ps.order {
		if p := ps.parts[id]; p.Name == name {
			return p, true
		}
	}
	return Part{}, false
}

func (ps *partSet) Parts() []Part {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	out := make([]Part, 0, len(ps.order))
	for _, id := range ps.order {
		out = append(out, ps.parts[id])
	}
	return out
}

func (ps *partSet) Names() []string {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	out := make([]string, 0, len(ps.order))
	for _, id := range ps.order {
		out = append(out, ps.parts[id].Name)
	}
	return out
}

func (ps *partSet) Children(id string) []string {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.childIndex()[id]
}

func (ps *partSet) childIndex() map[string][]string {
	index := make(map[string][]string)
	for _, id := range ps.order {
		if p := ps.parts[id].ParentID; p != "" {
			index[p] = append(index[p], id)
		}
	}
	return index
}

func (ps *partSet) Roots() []string {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	var roots []string
	for _, id := range ps.order {
		p := ps.parts[id].ParentID
		if _, ok := ps.parts[p]; p == "" || !ok {
			roots = append(roots, id)
		}
	}
	return roots
}

func (ps *partSet) SetTransform(id string, t Transform) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	p, ok := ps.parts[id]
	if !ok {
		return false
	}
	p.Transform = t
	ps.parts[id] = p
	return true
}

func (ps *partSet) Remove(id string) []string {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, ok := ps.parts[id]; !ok {
		return nil
	}

	index := ps.childIndex()
	removed := []string{id}
	for i := 0; i < len(removed); i++ {
		removed = append(removed, index[removed[i]]...)
	}
	for _, rid := range removed {
		delete(ps.parts, rid)
	}

	kept := ps.order[:0]
	for _, oid := range ps.order {
		if _, ok := ps.parts[oid]; ok {
			kept = append(kept, oid)
		}
	}
	ps.order = kept

	return removed
}

func (ps *partSet) Clear() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.order = nil
	ps.parts = make(map[string]Part)
}

func (ps *partSet) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.order)
}
