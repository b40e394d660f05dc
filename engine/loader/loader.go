// package loader imports skeletons and animation clips from model files.
package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-rig/engine/animator"
	"github.com/Carmen-Shannon/oxy-rig/engine/skeleton"
	"github.com/rs/zerolog"
)

var (
	// ErrNoSkin is returned when a file contains no skin to import a skeleton from.
	ErrNoSkin = errors.New("file contains no skin")
	// ErrUnsupportedFormat is returned for file extensions no backend handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// LoaderBackendType identifies the file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// Asset is an imported skeleton with its animation clips.
// Clip keyframes are keyed by the IDs of Bones.
type Asset struct {
	Name  string
	Bones []skeleton.Bone
	Clips []*animator.Clip
}

// Skeleton builds a skeleton from the asset's bones.
func (a *Asset) Skeleton() skeleton.Skeleton {
	return skeleton.NewSkeleton(skeleton.WithName(a.Name), skeleton.WithBones(a.Bones...))
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu     sync.RWMutex
	logger zerolog.Logger

	skinIndex int
	loop      bool

	cache   map[string]*Asset
	backend loaderBackend
}

// Loader imports assets and caches them by path or name.
type Loader interface {
	// Load imports a file and caches the result. If the path is already cached the cached asset is returned.
	// The backend must accept the file extension (.gltf/.glb for the glTF backend).
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *Asset: the imported asset
	//   - error: ErrUnsupportedFormat, ErrNoSkin or a parse error
	Load(path string) (*Asset, error)

	// LoadReader imports an asset from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the asset
	//   - r: the reader providing the data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *Asset: the imported asset
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (*Asset, error)

	// Get retrieves a cached asset by name. Returns nil if not found.
	Get(name string) *Asset

	// Names returns the cache keys in sorted order.
	Names() []string
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		logger: zerolog.Nop(),
		loop:   true,
		cache:  make(map[string]*Asset),
	}

	for _, option := range options {
		option(l)
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(l.logger, l.skinIndex, l.loop)
	}
	return l
}

func (l *loader) Load(path string) (*Asset, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	asset, err := l.backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	if asset.Name == "" {
		asset.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	l.store(path, asset)
	return asset, nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (*Asset, error) {
	asset, err := l.backend.LoadReader(r, isGLB)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	if asset.Name == "" {
		asset.Name = name
	}

	l.store(name, asset)
	return asset, nil
}

func (l *loader) store(key string, asset *Asset) {
	l.mu.Lock()
	l.cache[key] = asset
	l.mu.Unlock()

	l.logger.Info().Str("asset", key).Int("bones", len(asset.Bones)).Int("clips", len(asset.Clips)).Msg("asset loaded")
}

func (l *loader) Get(name string) *Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cache[name]
}

func (l *loader) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.cache))
	for k := range l.cache {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
