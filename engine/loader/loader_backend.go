package loader

import (
	"io"
)

// loaderBackend defines the generic interface for importing assets from files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load imports the skeleton and animations of the file at path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *Asset: the imported asset
	//   - error: error if loading fails
	Load(path string) (*Asset, error)

	// LoadReader imports an asset from a reader stream. External buffer URIs are not resolvable.
	//
	// Parameters:
	//   - r: the reader providing the data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *Asset: the imported asset
	//   - error: error if loading fails
	LoadReader(r io.Reader, isGLB bool) (*Asset, error)
}
