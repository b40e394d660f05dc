package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-rig/engine/profiler"
	"github.com/Carmen-Shannon/oxy-rig/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rig/engine/scene"
	"github.com/rs/zerolog"
)

// ErrEngineStopped is returned by Step and Run after Quit.
var ErrEngineStopped = errors.New("engine is stopped")

// engine implements the Engine interface.
type engine struct {
	mu     *sync.RWMutex
	stepMu *sync.Mutex
	logger zerolog.Logger

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates
	engineTickRate  time.Duration

	running atomic.Bool
	stopped atomic.Bool

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickCallback func(deltaTime float32)
	sink         renderer.FrameSink

	scenes map[int]scene.Scene

	workers int
	pool    worker.DynamicWorkerPool
}

// Engine is the main entry point for the runtime.
// It owns a set of scenes keyed by z-index, ticks every active scene each step and hands the
// resulting frames to a FrameSink in ascending key order.
type Engine interface {
	// EnableProfiler enables tick rate and memory reporting.
	EnableProfiler()

	// DisableProfiler disables tick rate and memory reporting.
	DisableProfiler()

	// SetTickRate sets the rate at which Run calls Step.
	//
	// Parameters:
	//   - fps: target steps per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// TickRate returns the interval between steps driven by Run.
	TickRate() time.Duration

	// SetTickCallback registers a function called at the start of every step, before any scene ticks.
	// Use this for input processing and scripted edits.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetFrameSink replaces the sink that receives each step's frames. Nil discards frames.
	SetFrameSink(sink renderer.FrameSink)

	// AddScene registers a scene at the given z-index key, replacing any scene already there.
	//
	// Parameters:
	//   - key: the z-index determining frame order (lower first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	RemoveScene(key int)

	// Scene returns the scene at the given key, or nil.
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	Scenes() map[int]scene.Scene

	// Step ticks every active scene once. Scenes are independent, so their ticks run in parallel on
	// the worker pool; each scene still poses before it skins. The frames are then submitted to the sink.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	//
	// Returns:
	//   - []scene.Frame: the frames of the active scenes in ascending key order
	//   - error: ErrEngineStopped after Quit, or the sink's error
	Step(deltaTime float32) ([]scene.Frame, error)

	// Run calls Step at the tick rate until the context is done or Quit is called.
	// Sink errors are logged and do not stop the loop.
	//
	// Parameters:
	//   - ctx: the context bounding the run
	//
	// Returns:
	//   - error: nil after Quit, the context's error when it ends the run, or ErrEngineStopped
	Run(ctx context.Context) error

	// Quit stops Run, waits for an in-flight step and shuts down the worker pool.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, workers, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.RWMutex{},
		stepMu:          &sync.Mutex{},
		logger:          zerolog.Nop(),
		tickRateChannel: make(chan time.Duration, 1),
		engineTickRate:  time.Second / 60,
		quitChannel:     make(chan struct{}),
		scenes:          make(map[int]scene.Scene),
		workers:         max(runtime.NumCPU()-1, 1),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	// Queue size of 256 accommodates typical scene counts with headroom.
	e.pool = worker.NewDynamicWorkerPool(e.workers, 256, time.Second)

	return e
}

// EnableProfiler enables tick rate and memory reporting.
func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

// DisableProfiler disables tick rate and memory reporting.
func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

// SetTickRate sets the step rate in steps per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)

	e.mu.Lock()
	e.engineTickRate = newRate
	e.mu.Unlock()

	if !e.running.Load() {
		return
	}

	// Non-blocking send - if the channel is full, replace the pending value
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) TickRate() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.engineTickRate
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) SetFrameSink(sink renderer.FrameSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sink = sink
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}

func (e *engine) Step(deltaTime float32) ([]scene.Frame, error) {
	e.stepMu.Lock()
	defer e.stepMu.Unlock()

	if e.stopped.Load() {
		return nil, ErrEngineStopped
	}

	e.mu.RLock()
	callback := e.tickCallback
	sink := e.sink
	profiling := e.profilingEnabled
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	active := make([]scene.Scene, 0, len(keys))
	for _, k := range keys {
		if s := e.scenes[k]; s != nil && s.Active() {
			active = append(active, s)
		}
	}
	e.mu.RUnlock()

	if callback != nil {
		callback(deltaTime)
	}

	frames := make([]scene.Frame, len(active))
	var wg sync.WaitGroup
	for i, s := range active {
		wg.Add(1)
		e.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						e.logger.Error().Str("scene", s.ID()).Interface("panic", r).Msg("scene tick recovered from panic")
					}
				}()
				frames[i] = s.Tick(deltaTime)
				return nil, nil
			},
		})
	}
	wg.Wait()

	if profiling {
		e.profiler.Tick()
	}

	if sink != nil {
		if err := sink.Submit(frames); err != nil {
			return frames, fmt.Errorf("failed to submit frames: %w", err)
		}
	}
	return frames, nil
}

func (e *engine) Run(ctx context.Context) error {
	if e.stopped.Load() {
		return ErrEngineStopped
	}
	if !e.running.CompareAndSwap(false, true) {
		return errors.New("engine is already running")
	}
	defer e.running.Store(false)

	ticker := time.NewTicker(e.TickRate())
	defer ticker.Stop()

	lastTick := time.Now()
	e.logger.Info().Dur("tick_rate", e.TickRate()).Int("workers", e.workers).Msg("engine running")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.quitChannel:
			return nil
		case now := <-ticker.C:
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if _, err := e.Step(dt); err != nil {
				if errors.Is(err, ErrEngineStopped) {
					return nil
				}
				e.logger.Error().Err(err).Msg("engine step failed")
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
		}
	}
}

// Quit signals Run to exit and releases the worker pool.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		e.stopped.Store(true)
		close(e.quitChannel)

		e.stepMu.Lock()
		e.pool.Stop()
		e.stepMu.Unlock()

		e.logger.Info().Msg("engine stopped")
	})
}

func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}
