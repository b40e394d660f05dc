package loader

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
)

// gltfLoaderBackend is a loaderBackend for glTF/GLB files.
type gltfLoaderBackend struct {
	logger    zerolog.Logger
	skinIndex int
	loop      bool
}

var _ loaderBackend = &gltfLoaderBackend{}

// newGLTFLoaderBackend creates a glTF backend that imports the given skin.
func newGLTFLoaderBackend(logger zerolog.Logger, skinIndex int, loop bool) *gltfLoaderBackend {
	return &gltfLoaderBackend{logger: logger, skinIndex: skinIndex, loop: loop}
}

func (b *gltfLoaderBackend) Load(path string) (*Asset, error) {
	p := newGLTFParser(filepath.Dir(path))
	if err := p.parseFile(path); err != nil {
		return nil, err
	}
	return b.extract(p)
}

func (b *gltfLoaderBackend) LoadReader(r io.Reader, isGLB bool) (*Asset, error) {
	p := newGLTFParser("")
	if err := p.parseReader(r, isGLB); err != nil {
		return nil, err
	}
	return b.extract(p)
}

// extract converts the parsed document into an Asset.
func (b *gltfLoaderBackend) extract(p *gltfParser) (*Asset, error) {
	doc := p.document
	if len(doc.Skins) == 0 {
		return nil, ErrNoSkin
	}

	joints, err := extractSkeleton(doc, b.skinIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to extract skeleton: %w", err)
	}

	asset := &Asset{Name: doc.Skins[b.skinIndex].Name}
	for _, j := range joints {
		asset.Bones = append(asset.Bones, j.bone)
	}

	for i := range doc.Animations {
		clip, err := extractClip(p, i, joints, b.loop)
		if err != nil {
			return nil, fmt.Errorf("failed to extract animation %d: %w", i, err)
		}
		if clip == nil {
			b.logger.Warn().Int("animation", i).Str("name", doc.Animations[i].Name).Msg("animation has no joint channels or zero length, skipped")
			continue
		}
		asset.Clips = append(asset.Clips, clip)
	}

	b.logger.Debug().
		Str("skin", asset.Name).
		Int("bones", len(asset.Bones)).
		Int("clips", len(asset.Clips)).
		Msg("glTF asset extracted")
	return asset, nil
}
