// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audroom/internal/dsp"
)

// Resampler streams src at a different sample rate using Catmull-Rom
// interpolation over a sliding four-frame window. Channel count is kept.
// When downsampling, a one-pole low-pass runs over the input first.
type Resampler struct {
	src      Source
	channels int
	dstRate  int
	step     float64 // source frames consumed per output frame

	// win[1] holds source frame `base`; win[0] is the one before it and
	// win[2], win[3] are the next two.
	win  [4][]float32
	base int
	pos  float64 // absolute read position in source frames

	primed bool
	eof    bool
	last   int // index of the final source frame, valid once eof is set

	in    []float32
	inPos int
	inLen int
	inErr error

	lowpass bool
	seeded  bool
	alpha   float32
	state   []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		channels: channels,
		dstRate:  dstRate,
		step:     step,
		in:       make([]float32, channels*1024),
		lowpass:  step > 1,
		alpha:    0.5,
		state:    make([]float32, channels),
	}
	for i := range r.win {
		r.win[i] = make([]float32, channels)
	}
	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("resampler: %w", err)
	}
	return nil
}

// nextFrame copies the next source frame into dst. It reports false once
// the source is exhausted.
func (r *Resampler) nextFrame(dst []float32) (bool, error) {
	for r.inPos >= r.inLen {
		if r.inErr != nil {
			if r.inErr == io.EOF {
				return false, nil
			}
			return false, r.inErr
		}
		n, err := r.src.ReadSamples(r.in)
		r.inPos, r.inLen = 0, n-n%r.channels
		if err != nil {
			r.inErr = err
		} else if n == 0 {
			r.inErr = io.EOF
		}
	}

	copy(dst, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels

	if r.lowpass {
		if !r.seeded {
			// Seed with the first frame to avoid a warm-up transient.
			copy(r.state, dst)
			r.seeded = true
		}
		for c := range dst {
			dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.state[c]
			r.state[c] = dst[c]
		}
	}
	return true, nil
}

// fill loads win[i] from the source, repeating win[i-1] past the end.
func (r *Resampler) fill(i, index int) error {
	if !r.eof {
		ok, err := r.nextFrame(r.win[i])
		if err != nil {
			return fmt.Errorf("resampler: %w", err)
		}
		if ok {
			return nil
		}
		r.eof = true
		r.last = index - 1
	}
	copy(r.win[i], r.win[i-1])
	return nil
}

func (r *Resampler) prime() error {
	ok, err := r.nextFrame(r.win[1])
	if err != nil {
		return fmt.Errorf("resampler: %w", err)
	}
	if !ok {
		return io.EOF
	}
	copy(r.win[0], r.win[1])

	if err := r.fill(2, 1); err != nil {
		return err
	}
	if err := r.fill(3, 2); err != nil {
		return err
	}
	r.primed = true
	return nil
}

// advance slides the window forward by one source frame.
func (r *Resampler) advance() error {
	r.win[0], r.win[1], r.win[2], r.win[3] = r.win[1], r.win[2], r.win[3], r.win[0]
	r.base++
	return r.fill(3, r.base+2)
}

// ReadSamples produces dst samples at the target rate.
// dst length should be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0

	for written < frames {
		for r.pos >= float64(r.base+1) {
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if r.eof && r.pos > float64(r.last) {
			return written * r.channels, io.EOF
		}

		t := float32(r.pos - float64(r.base))
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = dsp.CubicInterpolate(r.win[0][c], r.win[1][c], r.win[2][c], r.win[3][c], t)
		}

		written++
		r.pos += r.step
	}

	return written * r.channels, nil
}
