package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-rig/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/rs/zerolog"
)

// ErrSinkClosed is returned by Submit after Close.
var ErrSinkClosed = errors.New("frame sink is closed")

// instanceBuffers are the GPU instance buffers of one scene.
type instanceBuffers struct {
	parts    *wgpu.Buffer
	partCap  int
	gizmos   *wgpu.Buffer
	gizmoCap int
}

func (b *instanceBuffers) release() {
	if b.parts != nil {
		b.parts.Release()
		b.parts = nil
	}
	if b.gizmos != nil {
		b.gizmos.Release()
		b.gizmos = nil
	}
}

// wgpuSink implements FrameSink on a headless WebGPU device. Each scene gets its own part and gizmo
// instance buffers, which grow by doubling and are uploaded with Queue.WriteBuffer every step.
type wgpuSink struct {
	mu     *sync.Mutex
	logger zerolog.Logger
	label  string

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	initialCapacity int
	buffers         map[string]*instanceBuffers
	uploaded        uint64
	closed          bool
}

var _ FrameSink = &wgpuSink{}

// NewWGPUSink creates a FrameSink backed by a headless WebGPU device. No surface is created; frames are
// staged into GPU instance buffers for an external presenter to draw from.
//
// Parameters:
//   - options: functional options for sink configuration
//
// Returns:
//   - FrameSink: the sink
//   - error: an error if no adapter or device is available
func NewWGPUSink(options ...RendererBuilderOption) (FrameSink, error) {
	cfg := newSinkConfig(options)

	s := &wgpuSink{
		mu:              &sync.Mutex{},
		logger:          cfg.logger,
		label:           cfg.label,
		instance:        wgpu.CreateInstance(nil),
		initialCapacity: cfg.initialCapacity,
		buffers:         make(map[string]*instanceBuffers),
	}

	a, err := s.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
	})
	if err != nil {
		s.instance.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	s.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: cfg.label + " Device",
	})
	if err != nil {
		s.adapter.Release()
		s.instance.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	s.device = d
	s.queue = d.GetQueue()

	s.logger.Info().Str("label", cfg.label).Bool("fallback", cfg.forceFallbackAdapter).Msg("wgpu frame sink ready")
	return s, nil
}

func (s *wgpuSink) Submit(frames []scene.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	seen := make(map[string]struct{}, len(frames))
	for _, f := range frames {
		seen[f.SceneID] = struct{}{}
		if err := s.upload(Stage(f)); err != nil {
			return fmt.Errorf("failed to upload frame for scene %s: %w", f.SceneID, err)
		}
	}

	for id, bufs := range s.buffers {
		if _, ok := seen[id]; !ok {
			bufs.release()
			delete(s.buffers, id)
		}
	}
	return nil
}

// upload must be called with the lock held.
func (s *wgpuSink) upload(b Batch) error {
	bufs, ok := s.buffers[b.SceneID]
	if !ok {
		bufs = &instanceBuffers{}
		s.buffers[b.SceneID] = bufs
	}

	var partSize, gizmoSize int
	if len(b.Parts) > 0 {
		partSize = b.Parts[0].Size()
	}
	if len(b.Gizmos) > 0 {
		gizmoSize = b.Gizmos[0].Size()
	}

	if err := s.ensure(&bufs.parts, &bufs.partCap, len(b.Parts), partSize, b.SceneID+" Part Instances"); err != nil {
		return err
	}
	if err := s.ensure(&bufs.gizmos, &bufs.gizmoCap, len(b.Gizmos), gizmoSize, b.SceneID+" Gizmo Instances"); err != nil {
		return err
	}

	if data := b.PartBytes(); len(data) > 0 {
		if err := s.queue.WriteBuffer(bufs.parts, 0, data); err != nil {
			return err
		}
		s.uploaded += uint64(len(data))
	}
	if data := b.GizmoBytes(); len(data) > 0 {
		if err := s.queue.WriteBuffer(bufs.gizmos, 0, data); err != nil {
			return err
		}
		s.uploaded += uint64(len(data))
	}
	return nil
}

// ensure grows buf so it can hold count instances of stride bytes, doubling from the initial capacity.
func (s *wgpuSink) ensure(buf **wgpu.Buffer, capacity *int, count, stride int, label string) error {
	if count == 0 || (*buf != nil && count <= *capacity) {
		return nil
	}

	newCap := max(*capacity, s.initialCapacity)
	for newCap < count {
		newCap *= 2
	}

	nb, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            s.label + " " + label,
		Size:             uint64(newCap * stride),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return err
	}

	if *buf != nil {
		(*buf).Release()
	}
	*buf = nb
	*capacity = newCap

	s.logger.Debug().Str("buffer", label).Int("capacity", newCap).Msg("instance buffer resized")
	return nil
}

func (s *wgpuSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for id, bufs := range s.buffers {
		bufs.release()
		delete(s.buffers, id)
	}
	s.device.Release()
	s.adapter.Release()
	s.instance.Release()

	s.logger.Info().Uint64("uploaded_bytes", s.uploaded).Msg("wgpu frame sink closed")
	return nil
}
