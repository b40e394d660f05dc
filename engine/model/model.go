// package model ties a skeleton and its mesh parts together under an explicit ModelKind,
// and provides the procedural humanoid and robot presets.
package model

import (
	"github.com/Carmen-Shannon/oxy-rig/engine/mesh"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
)

// model implements the Model interface.
type model struct {
	name     string
	kind     ModelKind
	kindSet  bool
	skeleton skeleton.Skeleton
	parts    mesh.PartSet
}

// Model is a rig: a bone hierarchy, an independent mesh part hierarchy, and the kind that decides
// how the two are bound and skinned.
type Model interface {
	// Name returns the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Kind returns the model kind used by the auto-binder and the skinning evaluator.
	//
	// Returns:
	//   - ModelKind: Humanoid or Robot
	Kind() ModelKind

	// Skeleton returns the bone hierarchy of the model.
	//
	// Returns:
	//   - skeleton.Skeleton: the skeleton (never nil)
	Skeleton() skeleton.Skeleton

	// Parts returns the mesh parts of the model.
	//
	// Returns:
	//   - mesh.PartSet: the part set (never nil)
	Parts() mesh.PartSet
}

var _ Model = &model{}

// NewModel creates a new Model with the provided options.
// Missing skeleton or parts are replaced by empty ones. When no kind is given the kind is
// detected once from the part names.
//
// Parameters:
//   - options: variadic list of ModelBuilderOption functions
//
// Returns:
//   - Model: the newly created model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}

	if m.skeleton == nil {
		m.skeleton = skeleton.NewSkeleton(skeleton.WithName(m.name))
	}
	if m.parts == nil {
		m.parts = mesh.NewPartSet()
	}
	if !m.kindSet {
		m.kind = DetectKind(m.parts.Names())
	}

	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Kind() ModelKind {
	return m.kind
}

func (m *model) Skeleton() skeleton.Skeleton {
	return m.skeleton
}

func (m *model) Parts() mesh.PartSet {
	return m.parts
}
