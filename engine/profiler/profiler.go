// package profiler contains a tick-rate and memory profiler that reports through a zerolog logger.
package profiler

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// Stats is one profiler report.
type Stats struct {
	// TPS is the number of ticks per second over the last interval.
	TPS float64
	// HeapMB is the live heap size.
	HeapMB float64
	// AllocRateMB is the allocation rate in MB per second over the last interval.
	AllocRateMB float64
	// SysMB is the memory obtained from the OS.
	SysMB float64
	// GCCount is the total number of completed GC cycles.
	GCCount uint32
	// LastPauseUs is the duration of the most recent GC pause.
	LastPauseUs uint64
	// MaxPauseUs is the longest GC pause since the previous report.
	MaxPauseUs uint64
}

// Profiler tracks tick rate and memory statistics for performance monitoring.
// Reports are logged at info level once per interval.
type Profiler struct {
	logger         zerolog.Logger
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
}

// NewProfiler creates a new Profiler and applies the provided options.
// The interval defaults to 1 second and the logger to a no-op logger.
//
// Parameters:
//   - options: functional options for profiler configuration
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:         zerolog.Nop(),
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// Tick should be called once per engine tick.
// When the interval has elapsed it collects a Stats report, logs it and resets the counters.
//
// Returns:
//   - bool: true if a report was produced this tick
func (p *Profiler) Tick() bool {
	p.frameCount++
	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		TPS:         float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
		GCCount:     p.memStats.NumGC,
	}

	if s.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000
		start := p.lastGCCount
		if s.GCCount-start > 256 {
			start = s.GCCount - 256
		}
		for i := start; i < s.GCCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Info().
		Float64("tps", s.TPS).
		Float64("heap_mb", s.HeapMB).
		Float64("alloc_rate_mb", s.AllocRateMB).
		Uint32("gc", s.GCCount).
		Uint64("gc_last_us", s.LastPauseUs).
		Uint64("gc_max_us", s.MaxPauseUs).
		Float64("sys_mb", s.SysMB).
		Msg("profiler")

	p.frameCount = 0
	p.lastTime = now
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.last = s
	return true
}

// Last returns the most recent report, or the zero Stats if none has been produced.
func (p *Profiler) Last() Stats {
	return p.last
}
