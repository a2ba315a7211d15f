// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ik5/audroom/audio"
	"github.com/ik5/audroom/graph"
	"github.com/ik5/audroom/preset"
	"github.com/ik5/audroom/spatial"
)

// DefaultPositions are the marker positions before any input.
var DefaultPositions = spatial.Positions{
	Source:   spatial.Position3D{X: 1, Y: 0.5, Z: 1},
	Receiver: spatial.Position3D{X: -1, Y: 0.5, Z: -1},
}

type Options struct {
	Logger *slog.Logger
	// Initial positions; nil means DefaultPositions.
	Initial *spatial.Positions
}

// Unavailable reports a preset whose assets could not be loaded.
type Unavailable struct {
	Index int
	Err   error
}

// Snapshot is what the front end renders.
type Snapshot struct {
	Positions spatial.Positions
	// Gain is the attenuation for Positions; Applied is what the pipeline
	// currently multiplies by, which trails Gain while a ramp is running.
	Gain    float64
	Applied float64
	State   graph.State
	Mode    string
	// Preset is the index of the playing preset, or -1.
	Preset int
	// Selecting is the index of a selection still loading, or -1.
	Selecting int
}

// Engine is the single caller of its graph.Controller.
//
// Locks are taken in the order Engine.mu, then the store, then the
// controller. Store listeners only reach the controller.
type Engine struct {
	catalog *preset.Catalog
	ctrl    *graph.Controller
	store   *spatial.Store
	log     *slog.Logger

	unavailable chan Unavailable
	unsubscribe func()
	ctx         context.Context
	stop        context.CancelFunc
	wg          sync.WaitGroup

	mu        sync.Mutex
	track     *audio.Buffer
	gen       uint64
	cancel    context.CancelFunc
	current   int
	selecting int
	closed    bool
}

func New(catalog *preset.Catalog, ctrl *graph.Controller, opt Options) *Engine {
	initial := DefaultPositions
	if opt.Initial != nil {
		initial = *opt.Initial
	}

	e := &Engine{
		catalog:     catalog,
		ctrl:        ctrl,
		store:       spatial.NewStore(initial),
		log:         opt.Logger,
		unavailable: make(chan Unavailable, 8),
		current:     -1,
		selecting:   -1,
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	e.ctx, e.stop = context.WithCancel(context.Background())
	e.unsubscribe = e.store.Subscribe(e.positionsChanged)

	return e
}

// Start loads the dry track so PlayDry can be served.
func (e *Engine) Start(ctx context.Context) error {
	track, err := e.ctrl.LoadTrack(ctx, e.catalog.Track())
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.track = track
	e.log.Info("track loaded", "uri", e.catalog.Track(), "duration", track.Duration())
	return nil
}

// OnPositionChanged moves one marker.
func (e *Engine) OnPositionChanged(which spatial.Which, pos spatial.Position3D) error {
	return e.store.Set(which, pos)
}

// positionsChanged runs under the store's write lock, once per write and in
// write order.
func (e *Engine) positionsChanged(p spatial.Positions) {
	info, ok := e.ctrl.Active()
	if !ok {
		return
	}

	err := e.ctrl.SetGain(info.ID, p.Gain())
	if err != nil && !errors.Is(err, graph.ErrNotConnected) {
		e.log.Warn("updating gain", "pipeline", info.ID, "err", err)
	}
}

// SelectPreset switches to preset index. The index is checked before
// anything changes; loading and connecting happen in the background and are
// reported through the returned Pending.
func (e *Engine) SelectPreset(index int) (*Pending, error) {
	p, err := e.catalog.Get(index)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}

	gen := e.supersede()
	ctx, cancel := context.WithCancel(e.ctx)
	e.cancel = cancel
	e.selecting = index

	if err := e.store.SetBoth(p.Positions()); err != nil {
		cancel()
		return nil, err
	}

	pending := newPending(index)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()

		err := e.apply(ctx, gen, p)
		pending.finish(err)
	}()

	e.log.Debug("preset selected", "index", index, "ir", p.IR, "generation", gen)
	return pending, nil
}

// supersede invalidates any in-flight selection. e.mu must be held.
func (e *Engine) supersede() uint64 {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.selecting = -1
	e.gen++
	return e.gen
}

func (e *Engine) stale(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return gen != e.gen
}

func (e *Engine) apply(ctx context.Context, gen uint64, p preset.Preset) error {
	track, err := e.ctrl.LoadTrack(ctx, e.catalog.Track())
	var ir *audio.Buffer
	if err == nil {
		ir, err = e.ctrl.LoadImpulseResponse(ctx, p.IR)
	}

	if err != nil {
		if e.stale(gen) {
			e.log.Debug("dropping superseded preset load", "index", p.Index, "generation", gen)
			return ErrSuperseded
		}
		e.presetUnavailable(gen, p.Index, err)
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		e.log.Debug("dropping superseded preset load", "index", p.Index, "generation", gen)
		return ErrSuperseded
	}
	e.selecting = -1

	var (
		id        graph.PipelineID
		connected bool
	)
	e.store.View(func(pos spatial.Positions) {
		id, err = e.ctrl.Connect(track, graph.Convolved{IR: ir, Gain: pos.Gain()})
		if err == nil {
			connected = true
			err = e.ctrl.Start(id)
		}
	})
	switch {
	case err == nil:
	case !connected && errors.Is(err, graph.ErrAssetLoad):
		// The previous pipeline was not touched.
		e.signalUnavailable(p.Index, err)
		return err
	case !connected:
		e.log.Error("preset pipeline failed", "index", p.Index, "err", err)
		return err
	default:
		e.ctrl.Teardown(id)
		e.current = -1
		e.log.Error("preset pipeline failed", "index", p.Index, "err", err)
		return err
	}

	e.track = track
	e.current = p.Index
	e.log.Info("preset playing", "index", p.Index, "pipeline", id)
	return nil
}

func (e *Engine) presetUnavailable(gen uint64, index int, err error) {
	e.mu.Lock()
	if gen == e.gen {
		e.selecting = -1
	}
	e.mu.Unlock()

	e.signalUnavailable(index, err)
}

// signalUnavailable logs and publishes a failed preset without blocking.
func (e *Engine) signalUnavailable(index int, err error) {
	e.log.Warn("preset unavailable", "index", index, "err", err)

	select {
	case e.unavailable <- Unavailable{Index: index, Err: err}:
	default:
		e.log.Warn("unavailable signal dropped", "index", index)
	}
}

// teardownActive releases the current pipeline, if any. Called with e.mu held.
func (e *Engine) teardownActive() {
	if info, ok := e.ctrl.Active(); ok {
		e.ctrl.Teardown(info.ID)
	}
}

// PlayDry starts playback. With nothing connected it plays the dry track
// through a distance gain; a stopped pipeline is resumed; a playing one is
// left alone. A selection still loading is cancelled.
func (e *Engine) PlayDry() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	info, ok := e.ctrl.Active()
	if ok && info.State == graph.Playing {
		return nil
	}
	if e.track == nil {
		return fmt.Errorf("%w: track not loaded", graph.ErrInvalidState)
	}

	e.supersede()

	if ok {
		return e.ctrl.Start(info.ID)
	}

	var err error
	e.store.View(func(pos spatial.Positions) {
		var id graph.PipelineID
		id, err = e.ctrl.Connect(e.track, graph.Direct{Gain: pos.Gain()})
		if err == nil {
			err = e.ctrl.Start(id)
		}
	})
	if err != nil {
		return err
	}

	e.current = -1
	return nil
}

// Stop halts playback and cancels any selection still loading. It fails
// with graph.ErrInvalidState when no pipeline exists.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.supersede()

	info, ok := e.ctrl.Active()
	if !ok {
		return fmt.Errorf("%w: nothing to stop", graph.ErrInvalidState)
	}
	return e.ctrl.Stop(info.ID)
}

// Unavailable delivers presets whose assets failed to load.
func (e *Engine) Unavailable() <-chan Unavailable { return e.unavailable }

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	current, selecting := e.current, e.selecting
	e.mu.Unlock()

	pos := e.store.Get()
	s := Snapshot{
		Positions: pos,
		Gain:      pos.Gain(),
		State:     e.ctrl.State(),
		Mode:      graph.ModeName(nil),
		Preset:    current,
		Selecting: selecting,
	}
	if info, ok := e.ctrl.Active(); ok {
		s.Applied = info.Gain
		s.Mode = info.Mode
		s.State = info.State
	}
	return s
}

// Close cancels loads, waits for them and releases the pipeline.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.supersede()
	e.stop()
	e.mu.Unlock()

	e.wg.Wait()
	e.unsubscribe()

	e.mu.Lock()
	e.teardownActive()
	e.mu.Unlock()

	return nil
}
