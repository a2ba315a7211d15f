// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"sync"
	"time"
)

// DefaultRampWindow is how long a gain change takes to reach its target.
const DefaultRampWindow = 100 * time.Millisecond

// Gain scales a Source by a linear factor. Changes never step: SetTarget
// starts a linear ramp from the current value that lands exactly on the
// target after the ramp window, counted in frames of the stream.
//
// SetTarget and Value may be called while another goroutine is reading.
type Gain struct {
	src     Source
	rampLen int

	mu      sync.Mutex
	value   float64
	from    float64
	target  float64
	rampPos int
	ended   bool
}

// NewGain starts at initial with no ramp pending. A window <= 0 makes
// target changes apply on the next frame.
func NewGain(src Source, initial float64, window time.Duration) *Gain {
	frames := int(window.Seconds() * float64(src.SampleRate()))
	if frames < 1 {
		frames = 1
	}

	return &Gain{
		src:     src,
		rampLen: frames,
		value:   initial,
		from:    initial,
		target:  initial,
		rampPos: frames,
	}
}

func (g *Gain) SampleRate() int { return g.src.SampleRate() }
func (g *Gain) Channels() int   { return g.src.Channels() }
func (g *Gain) BufSize() int    { return g.src.BufSize() }

func (g *Gain) Close() error { return g.src.Close() }

// SetTarget ramps from wherever the gain currently is toward v.
func (g *Gain) SetTarget(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.from = g.value
	g.target = v
	g.rampPos = 0
}

// Value is the gain applied to the most recent frame.
func (g *Gain) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.value
}

func (g *Gain) Target() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.target
}

// Ended reports whether the wrapped source has returned io.EOF.
func (g *Gain) Ended() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.ended
}

// RampFrames is the ramp length in frames.
func (g *Gain) RampFrames() int { return g.rampLen }

func (g *Gain) ReadSamples(dst []float32) (int, error) {
	n, err := g.src.ReadSamples(dst)

	g.mu.Lock()
	defer g.mu.Unlock()

	if err == io.EOF {
		g.ended = true
	}
	if n == 0 {
		return 0, err
	}

	channels := g.src.Channels()

	for f := 0; f+channels <= n; f += channels {
		if g.rampPos < g.rampLen {
			g.rampPos++
			if g.rampPos == g.rampLen {
				g.value = g.target
			} else {
				g.value = g.from + (g.target-g.from)*float64(g.rampPos)/float64(g.rampLen)
			}
		}

		v := float32(g.value)
		for c := range channels {
			dst[f+c] *= v
		}
	}

	return n, err
}
