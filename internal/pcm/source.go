// SPDX-License-Identifier: EPL-2.0

// Package pcm adapts the go-audio integer decoders (WAV and AIFF) to the
// float32 Source contract used by the audio package.
package pcm

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audroom/internal/dsp"
)

// Reader is the subset of the go-audio wav/aiff decoders the Source needs.
type Reader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source streams normalised float32 samples out of a go-audio Reader.
type Source struct {
	dec        Reader
	sampleRate int
	channels   int
	scale      float32
	buf        *goaudio.IntBuffer
	done       bool
}

// NewSource wraps dec. bitDepth selects the integer scale of the samples
// the decoder produces.
func NewSource(dec Reader, sampleRate, channels, bitDepth int) *Source {
	return &Source{
		dec:        dec,
		sampleRate: sampleRate,
		channels:   channels,
		scale:      dsp.IntScale(bitDepth),
		buf: &goaudio.IntBuffer{
			Data:           make([]int, 4096),
			Format:         dec.Format(),
			SourceBitDepth: bitDepth,
		},
	}
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BufSize() int    { return cap(s.buf.Data) }
func (s *Source) Close() error    { return nil }

// ReadSamples fills dst with interleaved samples in [-1,1). The go-audio
// decoders signal the end of the PCM chunk with an empty read.
func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.done {
		return 0, io.EOF
	}

	if cap(s.buf.Data) < len(dst) {
		s.buf.Data = make([]int, len(dst))
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.buf)
	for i := range n {
		dst[i] = float32(s.buf.Data[i]) / s.scale
	}

	switch {
	case err != nil && err != io.EOF:
		return n, fmt.Errorf("pcm: %w", err)
	case n == 0:
		s.done = true
		return 0, io.EOF
	case err == io.EOF:
		s.done = true
		return n, io.EOF
	}

	return n, nil
}
