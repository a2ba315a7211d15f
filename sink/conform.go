// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audroom/audio"
)

var ErrUnsupportedLayout = errors.New("unsupported output layout")

// conform adapts src to rate and channels. Output is either mono or stereo.
func conform(src audio.Source, rate, channels int) (audio.Source, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedLayout, channels)
	}

	if src.Channels() > 2 || (src.Channels() == 2 && channels == 1) {
		src = audio.NewMonoMixer(src)
	}
	if src.SampleRate() != rate {
		src = audio.NewResampler(src, rate)
	}
	if src.Channels() == 1 && channels == 2 {
		src = &upmix{src: src}
	}
	return src, nil
}

// upmix copies a mono source to both stereo channels.
type upmix struct {
	src audio.Source
	buf []float32
}

func (u *upmix) SampleRate() int { return u.src.SampleRate() }
func (u *upmix) Channels() int   { return 2 }
func (u *upmix) BufSize() int    { return u.src.BufSize() * 2 }
func (u *upmix) Close() error    { return u.src.Close() }

func (u *upmix) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / 2
	if frames == 0 {
		return 0, nil
	}
	if cap(u.buf) < frames {
		u.buf = make([]float32, frames)
	}
	mono := u.buf[:frames]

	n, err := u.src.ReadSamples(mono)
	for i, v := range mono[:n] {
		dst[2*i] = v
		dst[2*i+1] = v
	}
	if err != nil && err != io.EOF {
		return n * 2, fmt.Errorf("upmix: %w", err)
	}
	return n * 2, err
}
