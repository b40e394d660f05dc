// package renderer contains the frame sinks that consume the frames produced by scene ticks, and the
// staging of those frames into GPU-aligned instance data.
package renderer

import (
	"errors"
	"sort"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
)

// gizmoMinLength keeps zero-length bones visible.
const gizmoMinLength = 0.02

// FrameSink receives the frames of every active scene once per engine step, in ascending scene key order.
// Submit is called from a single goroutine; implementations do not need to be safe for concurrent use.
type FrameSink interface {
	// Submit consumes one step's frames.
	//
	// Parameters:
	//   - frames: the frames of the active scenes, in render order
	//
	// Returns:
	//   - error: an error if the frames could not be consumed
	Submit(frames []scene.Frame) error

	// Close releases any resources held by the sink.
	Close() error
}

// Batch is one frame staged into GPU instance data.
type Batch struct {
	SceneID string
	// PartIDs holds the part ID of each entry of Parts.
	PartIDs []string
	Parts   []GPUPartInstance
	Gizmos  []GPUGizmoInstance
}

// Stage converts a frame into GPU instance data. Parts are ordered by ID so that instance indices are
// stable across frames; gizmos keep the frame's bone order.
//
// Parameters:
//   - f: the frame to stage
//
// Returns:
//   - Batch: the staged instance data
func Stage(f scene.Frame) Batch {
	b := Batch{
		SceneID: f.SceneID,
		PartIDs: make([]string, 0, len(f.Parts)),
		Parts:   make([]GPUPartInstance, 0, len(f.Parts)),
		Gizmos:  make([]GPUGizmoInstance, 0, len(f.Bones)),
	}

	for id := range f.Parts {
		b.PartIDs = append(b.PartIDs, id)
	}
	sort.Strings(b.PartIDs)
	for _, id := range b.PartIDs {
		b.Parts = append(b.Parts, GPUPartInstance{Model: f.Parts[id].Matrix()})
	}

	for _, g := range f.Bones {
		l := max(g.Length, gizmoMinLength)
		b.Gizmos = append(b.Gizmos, GPUGizmoInstance{
			Model: common.ModelMatrix(g.Position, g.Rotation, mgl32.Vec3{l, l, l}),
			Color: GizmoColor(g.State),
		})
	}
	return b
}

// PartBytes returns the part instances as one contiguous upload buffer.
func (b Batch) PartBytes() []byte {
	return common.SliceToBytes(b.Parts)
}

// GizmoBytes returns the gizmo instances as one contiguous upload buffer.
func (b Batch) GizmoBytes() []byte {
	return common.SliceToBytes(b.Gizmos)
}

// NewFrameSink builds the sink for a backend type.
//
// Parameters:
//   - backend: the backend to build
//   - options: functional options shared by all backends
//
// Returns:
//   - FrameSink: the sink
//   - error: an error if the backend could not be initialized
func NewFrameSink(backend RendererBackendType, options ...RendererBuilderOption) (FrameSink, error) {
	switch backend {
	case BackendTypeLog:
		cfg := newSinkConfig(options)
		return NewLogSink(cfg.logger), nil
	case BackendTypeWGPU:
		return NewWGPUSink(options...)
	default:
		return NopSink(), nil
	}
}

type nopSink struct{}

// NopSink returns a sink that discards every frame.
func NopSink() FrameSink {
	return nopSink{}
}

func (nopSink) Submit([]scene.Frame) error { return nil }
func (nopSink) Close() error               { return nil }

// logSink implements FrameSink by logging a summary of each frame.
type logSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink that writes one debug event per frame.
//
// Parameters:
//   - logger: the logger to write to
//
// Returns:
//   - FrameSink: the log sink
func NewLogSink(logger zerolog.Logger) FrameSink {
	return &logSink{logger: logger}
}

func (s *logSink) Submit(frames []scene.Frame) error {
	for _, f := range frames {
		s.logger.Debug().
			Str("scene", f.SceneID).
			Float32("time", f.Time).
			Bool("animated", f.Animated).
			Int("parts", len(f.Parts)).
			Int("bones", len(f.Bones)).
			Str("selected", f.Selected).
			Msg("frame")
	}
	return nil
}

func (s *logSink) Close() error {
	return nil
}

// multiSink implements FrameSink by fanning frames out to several sinks.
type multiSink struct {
	sinks []FrameSink
}

// NewMultiSink creates a sink that submits every step to each sink in order.
// Nil sinks are skipped.
//
// Parameters:
//   - sinks: the sinks to fan out to
//
// Returns:
//   - FrameSink: the combined sink
func NewMultiSink(sinks ...FrameSink) FrameSink {
	m := &multiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Submit submits to every sink even when one fails and joins the errors.
func (m *multiSink) Submit(frames []scene.Frame) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Submit(frames); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
