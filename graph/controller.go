// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/audroom/audio"
)

type Options struct {
	Logger *slog.Logger
	// RampWindow is how long SetGain takes to reach its target. Zero means
	// audio.DefaultRampWindow.
	RampWindow time.Duration
	// Loop restarts the track when it ends instead of going silent.
	Loop bool
}

// Controller is the only owner of pipeline nodes. All methods are safe for
// concurrent use; they are applied one at a time.
type Controller struct {
	loader Loader
	sink   Sink
	log    *slog.Logger
	ramp   time.Duration
	loop   bool

	mu        sync.Mutex
	tracks    map[string]*audio.Buffer
	loading   int
	connected bool // any pipeline was ever connected
	active    *pipeline
}

type pipeline struct {
	id     PipelineID
	track  *audio.Buffer
	mode   PipelineMode
	state  State
	target float64
	head   *audio.Gain
}

func NewController(loader Loader, sink Sink, opt Options) *Controller {
	c := &Controller{
		loader: loader,
		sink:   sink,
		log:    opt.Logger,
		ramp:   opt.RampWindow,
		loop:   opt.Loop,
		tracks: make(map[string]*audio.Buffer),
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.ramp == 0 {
		c.ramp = audio.DefaultRampWindow
	}
	return c
}

// LoadTrack decodes the dry track. A track that loaded once is served from
// cache on later calls with the same uri.
func (c *Controller) LoadTrack(ctx context.Context, uri string) (*audio.Buffer, error) {
	c.mu.Lock()
	if buf, ok := c.tracks[uri]; ok {
		c.mu.Unlock()
		return buf, nil
	}
	c.mu.Unlock()

	buf, err := c.load(ctx, uri)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if cached, ok := c.tracks[uri]; ok {
		buf = cached
	} else {
		c.tracks[uri] = buf
	}
	c.mu.Unlock()

	return buf, nil
}

// LoadImpulseResponse decodes a convolution kernel. Impulse responses are
// not cached.
func (c *Controller) LoadImpulseResponse(ctx context.Context, uri string) (*audio.Buffer, error) {
	return c.load(ctx, uri)
}

func (c *Controller) load(ctx context.Context, uri string) (*audio.Buffer, error) {
	c.mu.Lock()
	c.loading++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading--
		c.mu.Unlock()
	}()

	buf, err := c.loader.Load(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}
	return buf, nil
}

// Connect wires track through mode into a new pipeline. A pipeline that is
// already connected is halted and released before the new one is installed.
// If the new chain cannot be built the current pipeline is left untouched.
func (c *Controller) Connect(track *audio.Buffer, mode PipelineMode) (PipelineID, error) {
	if track == nil {
		return PipelineID{}, fmt.Errorf("%w: connect without a track", ErrInvalidState)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := &pipeline{
		id:    PipelineID(uuid.New()),
		track: track,
		mode:  mode,
		state: Connected,
	}
	if err := c.build(p); err != nil {
		return PipelineID{}, err
	}

	if c.active != nil {
		c.release(c.active)
	}
	c.active = p
	c.connected = true
	c.log.Debug("pipeline connected", "id", p.id, "mode", ModeName(mode), "gain", p.target)

	return p.id, nil
}

// build creates a fresh node chain for p at its target gain.
func (c *Controller) build(p *pipeline) error {
	var (
		src  audio.Source = p.track.NewReader(c.loop)
		gain float64
	)

	switch m := p.mode.(type) {
	case Direct:
		gain = m.Gain
	case Convolved:
		if m.IR == nil {
			return fmt.Errorf("%w: convolved pipeline without an impulse response", ErrInvalidState)
		}
		conv, err := audio.NewConvolver(src, m.IR)
		if err != nil {
			return fmt.Errorf("%w: impulse response: %w", ErrAssetLoad, err)
		}
		src, gain = conv, m.Gain
	default:
		return fmt.Errorf("%w: no pipeline mode", ErrInvalidState)
	}

	if p.head == nil {
		p.target = gain
	}
	p.head = audio.NewGain(src, p.target, c.ramp)
	return nil
}

// release halts and closes p's nodes. c.mu must be held.
func (c *Controller) release(p *pipeline) {
	if p.state == Playing {
		c.sink.Halt()
	}
	if err := p.head.Close(); err != nil {
		c.log.Warn("closing pipeline", "id", p.id, "err", err)
	}
	p.state = Idle
	p.head = nil
	c.log.Debug("pipeline released", "id", p.id)
}

// lookup returns the active pipeline if it is id. c.mu must be held.
func (c *Controller) lookup(id PipelineID) (*pipeline, error) {
	if c.active == nil && !c.connected {
		return nil, fmt.Errorf("%w: nothing connected", ErrInvalidState)
	}
	if c.active == nil || c.active.id != id {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, id)
	}
	c.settle(c.active)
	return c.active, nil
}

// settle moves a playing pipeline whose track ran out to Stopped, so the
// next Start plays it again. c.mu must be held.
func (c *Controller) settle(p *pipeline) {
	if p.state == Playing && p.head.Ended() {
		p.state = Stopped
		c.log.Debug("pipeline finished", "id", p.id)
	}
}

// Start plays the pipeline. Starting a playing pipeline does nothing; a
// stopped one plays the track again from the beginning.
func (c *Controller) Start(id PipelineID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.lookup(id)
	if err != nil {
		return err
	}

	switch p.state {
	case Playing:
		return nil
	case Stopped:
		if err := p.head.Close(); err != nil {
			c.log.Warn("closing pipeline", "id", p.id, "err", err)
		}
		if err := c.build(p); err != nil {
			return err
		}
	}

	if err := c.sink.Play(p.head); err != nil {
		return fmt.Errorf("starting %s: %w", p.id, err)
	}
	p.state = Playing
	c.log.Debug("pipeline playing", "id", p.id)

	return nil
}

// Stop halts playback and keeps the pipeline connected.
func (c *Controller) Stop(id PipelineID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.lookup(id)
	if err != nil {
		return err
	}

	if p.state == Playing {
		c.sink.Halt()
	}
	p.state = Stopped
	return nil
}

// SetGain ramps the pipeline's gain toward g over the ramp window.
func (c *Controller) SetGain(id PipelineID, g float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.lookup(id)
	if err != nil {
		return err
	}

	p.target = g
	p.head.SetTarget(g)
	return nil
}

// Teardown releases the pipeline and returns the controller to Idle.
// Tearing down a pipeline that is already gone does nothing.
func (c *Controller) Teardown(id PipelineID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil || c.active.id != id {
		return
	}
	c.release(c.active)
	c.active = nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.active != nil:
		c.settle(c.active)
		return c.active.state
	case c.loading > 0:
		return Loading
	default:
		return Idle
	}
}

// Active describes the connected pipeline, if there is one.
func (c *Controller) Active() (Info, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.active
	if p == nil {
		return Info{}, false
	}
	c.settle(p)
	return Info{
		ID:     p.id,
		Mode:   ModeName(p.mode),
		State:  p.state,
		Gain:   p.head.Value(),
		Target: p.target,
	}, true
}
