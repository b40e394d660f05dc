package renderer

import (
	"fmt"
	"strings"
)

// RendererBackendType identifies the FrameSink implementation built by NewFrameSink.
type RendererBackendType int

const (
	// BackendTypeNone discards every frame.
	BackendTypeNone RendererBackendType = iota

	// BackendTypeLog writes a structured summary of every frame to a zerolog logger.
	BackendTypeLog

	// BackendTypeWGPU stages frames into instance buffers on a headless WebGPU device.
	BackendTypeWGPU
)

// String returns the configuration name of the backend.
func (b RendererBackendType) String() string {
	switch b {
	case BackendTypeNone:
		return "none"
	case BackendTypeLog:
		return "log"
	case BackendTypeWGPU:
		return "wgpu"
	default:
		return "unknown"
	}
}

// ParseBackendType parses a backend name as used in configuration files.
//
// Parameters:
//   - s: "none", "log" or "wgpu" (case-insensitive)
//
// Returns:
//   - RendererBackendType: the parsed backend
//   - error: an error if the name is not recognized
func ParseBackendType(s string) (RendererBackendType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return BackendTypeNone, nil
	case "log":
		return BackendTypeLog, nil
	case "wgpu":
		return BackendTypeWGPU, nil
	default:
		return BackendTypeNone, fmt.Errorf("unknown render backend %q", s)
	}
}
