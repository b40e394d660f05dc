package model

import (
	"github.com/Carmen-Shannon/oxy-rig/engine/mesh"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithKind is an option builder that sets the kind of the Model explicitly.
//
// Parameters:
//   - kind: Humanoid or Robot
//
// Returns:
//   - ModelBuilderOption: a function that applies the kind option to a model
func WithKind(kind ModelKind) ModelBuilderOption {
	return func(m *model) {
		m.kind = kind
		m.kindSet = true
	}
}

// WithSkeleton is an option builder that sets the bone hierarchy of the Model.
//
// Parameters:
//   - s: the skeleton to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the skeleton option to a model
func WithSkeleton(s skeleton.Skeleton) ModelBuilderOption {
	return func(m *model) {
		m.skeleton = s
	}
}

// WithParts is an option builder that sets the mesh parts of the Model.
//
// Parameters:
//   - parts: the part set to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the parts option to a model
func WithParts(parts mesh.PartSet) ModelBuilderOption {
	return func(m *model) {
		m.parts = parts
	}
}
