// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/ik5/audroom/internal/dsp"
)

const minConvolutionBlock = 1024

// Convolver applies an impulse response to a Source with FFT overlap-add.
//
// The impulse response is conformed to the signal first: resampled to the
// signal's rate, then either applied per channel (matching channel count),
// shared by all channels (mono IR) or downmixed to mono. Kernels are scaled
// to unit energy using the loudest channel. When the dry signal ends, the
// reverb tail is played out before io.EOF.
type Convolver struct {
	src      Source
	channels int
	kernels  []*dsp.Overlap
	block    int

	in     []float32
	planar [][]float64
	wet    [][]float64

	out    []float32
	outPos int
	outLen int

	srcDone  bool
	tailLeft int
	finished bool
}

func NewConvolver(src Source, ir *Buffer) (*Convolver, error) {
	channels := src.Channels()

	kernels, err := conformKernels(ir, src.SampleRate(), channels)
	if err != nil {
		return nil, err
	}

	c := &Convolver{
		src:      src,
		channels: channels,
		kernels:  make([]*dsp.Overlap, channels),
		planar:   make([][]float64, channels),
		wet:      make([][]float64, channels),
	}

	for ch := range channels {
		k := kernels[0]
		if len(kernels) == channels {
			k = kernels[ch]
		}
		c.kernels[ch] = dsp.NewOverlap(k, minConvolutionBlock)
	}

	c.block = c.kernels[0].BlockSize()
	c.tailLeft = c.kernels[0].TailLen()
	c.in = make([]float32, c.block*channels)
	c.out = make([]float32, c.block*channels)
	for ch := range channels {
		c.planar[ch] = make([]float64, c.block)
		c.wet[ch] = make([]float64, c.block)
	}

	return c, nil
}

// conformKernels returns either one kernel shared by every channel or one
// kernel per channel.
func conformKernels(ir *Buffer, rate, channels int) ([][]float64, error) {
	if ir == nil || ir.Frames() == 0 {
		return nil, ErrEmptyBuffer
	}

	b := ir
	if b.SampleRate() != rate {
		resampled, err := ReadAll(NewResampler(b.NewReader(false), rate))
		if err != nil {
			return nil, fmt.Errorf("resampling impulse response: %w", err)
		}
		b = resampled
	}

	var kernels [][]float64
	switch b.Channels() {
	case 1:
		kernels = [][]float64{b.Channel(0)}
	case channels:
		for ch := range channels {
			kernels = append(kernels, b.Channel(ch))
		}
	default:
		mono, err := ReadAll(NewMonoMixer(b.NewReader(false)))
		if err != nil {
			return nil, fmt.Errorf("downmixing impulse response: %w", err)
		}
		kernels = [][]float64{mono.Channel(0)}
	}

	var peak float64
	for _, k := range kernels {
		var energy float64
		for _, v := range k {
			energy += v * v
		}
		peak = max(peak, math.Sqrt(energy))
	}
	if peak > 0 {
		for _, k := range kernels {
			for i := range k {
				k[i] /= peak
			}
		}
	}

	return kernels, nil
}

func (c *Convolver) SampleRate() int { return c.src.SampleRate() }
func (c *Convolver) Channels() int   { return c.channels }
func (c *Convolver) BufSize() int    { return len(c.out) }

func (c *Convolver) Close() error {
	if err := c.src.Close(); err != nil {
		return fmt.Errorf("convolver: %w", err)
	}
	return nil
}

// fill reads up to one block of dry input and returns the frame count.
func (c *Convolver) fill() (int, error) {
	k := 0
	for k < len(c.in) && !c.srcDone {
		n, err := c.src.ReadSamples(c.in[k:])
		k += n
		if err == io.EOF || (err == nil && n == 0) {
			c.srcDone = true
			break
		}
		if err != nil {
			return 0, fmt.Errorf("convolver: %w", err)
		}
	}
	return k / c.channels, nil
}

// render convolves the next block into c.out.
func (c *Convolver) render() error {
	frames := 0
	if !c.srcDone {
		var err error
		if frames, err = c.fill(); err != nil {
			return err
		}
	}

	emit := frames
	if c.srcDone {
		extra := min(c.block-frames, c.tailLeft)
		emit += extra
		c.tailLeft -= extra
	}

	if emit == 0 {
		c.finished = true
		return nil
	}

	for ch := range c.channels {
		p := c.planar[ch][:frames]
		for f := range frames {
			p[f] = float64(c.in[f*c.channels+ch])
		}
		c.kernels[ch].Process(c.wet[ch], p)
	}

	for f := range emit {
		for ch := range c.channels {
			c.out[f*c.channels+ch] = float32(c.wet[ch][f])
		}
	}
	c.outPos, c.outLen = 0, emit*c.channels

	return nil
}

func (c *Convolver) ReadSamples(dst []float32) (int, error) {
	if len(dst)%c.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	written := 0
	for written < len(dst) {
		if c.outPos >= c.outLen {
			if c.finished {
				return written, io.EOF
			}
			if err := c.render(); err != nil {
				return written, err
			}
			continue
		}

		n := copy(dst[written:], c.out[c.outPos:c.outLen])
		c.outPos += n
		written += n
	}

	return written, nil
}
