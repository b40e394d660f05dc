// package document contains the YAML scene document used to save, load and exchange rigs.
package document

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-rig/engine/animator"
	"github.com/Carmen-Shannon/oxy-rig/engine/binding"
	"github.com/Carmen-Shannon/oxy-rig/engine/mesh"
	"github.com/Carmen-Shannon/oxy-rig/engine/model"
	"github.com/Carmen-Shannon/oxy-rig/engine/scene"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
	"gopkg.in/yaml.v3"
)

// Version is the document format written by Save.
const Version = 1

// ErrUnsupportedVersion is returned when a document is newer than this build understands.
var ErrUnsupportedVersion = errors.New("unsupported document version")

// Document is the serialized form of a scene: its rest skeleton, mesh parts, bindings and clips.
// The live pose, player state and selection are not saved.
type Document struct {
	Version int    `yaml:"version"`
	Name    string `yaml:"name"`
	// Kind is optional; when absent it is detected from the part names on Build.
	Kind     *model.ModelKind  `yaml:"kind,omitempty"`
	Bones    []skeleton.Bone   `yaml:"bones"`
	Parts    []mesh.Part       `yaml:"parts,omitempty"`
	Bindings []binding.Binding `yaml:"bindings,omitempty"`
	Clips    []*animator.Clip  `yaml:"clips,omitempty"`
}

// FromScene captures a scene's model, bindings and clips.
// Bones are taken from the rest pose so that an in-progress animation is not baked in.
//
// Parameters:
//   - s: the scene to capture
//
// Returns:
//   - *Document: the document
func FromScene(s scene.Scene) *Document {
	m := s.Model()
	kind := m.Kind()
	return &Document{
		Version:  Version,
		Name:     s.Name(),
		Kind:     &kind,
		Bones:    m.Skeleton().RestBones(),
		Parts:    m.Parts().Parts(),
		Bindings: s.Bindings(),
		Clips:    s.Clips(),
	}
}

// Build creates a scene from the document. Unlike the tolerant builder options, Build rejects
// documents with duplicate IDs, parent cycles or invalid clips.
//
// Parameters:
//   - options: scene options applied after the document's content (logger, player, solver)
//
// Returns:
//   - scene.Scene: the scene
//   - error: error if the document is inconsistent
func (d *Document) Build(options ...scene.SceneBuilderOption) (scene.Scene, error) {
	skel := skeleton.NewSkeleton(skeleton.WithName(d.Name))
	if err := skel.Add(d.Bones...); err != nil {
		return nil, fmt.Errorf("document %q bones: %w", d.Name, err)
	}

	parts := mesh.NewPartSet()
	if err := parts.Add(d.Parts...); err != nil {
		return nil, fmt.Errorf("document %q parts: %w", d.Name, err)
	}

	modelOpts := []model.ModelBuilderOption{
		model.WithName(d.Name),
		model.WithSkeleton(skel),
		model.WithParts(parts),
	}
	if d.Kind != nil {
		modelOpts = append(modelOpts, model.WithKind(*d.Kind))
	}

	for _, c := range d.Clips {
		if c == nil {
			continue
		}
		c.Sort()
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("document %q clip %q: %w", d.Name, c.Name, err)
		}
	}

	opts := append([]scene.SceneBuilderOption{
		scene.WithBindings(d.Bindings...),
		scene.WithClips(d.Clips...),
	}, options...)
	return scene.NewScene(d.Name, model.NewModel(modelOpts...), opts...), nil
}

// Save encodes the document as YAML. A zero Version is written as the current version.
//
// Parameters:
//   - w: the destination
//   - d: the document
//
// Returns:
//   - error: error if encoding fails
func Save(w io.Writer, d *Document) error {
	if d.Version == 0 {
		d.Version = Version
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return enc.Close()
}

// Load decodes a YAML document. Unknown fields are rejected.
//
// Parameters:
//   - r: the source
//
// Returns:
//   - *Document: the document
//   - error: error if decoding fails or the version is unsupported
func Load(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var d Document
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if d.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, d.Version)
	}
	return &d, nil
}

// SaveFile writes the document to path.
func SaveFile(path string, d *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Save(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads the document at path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
