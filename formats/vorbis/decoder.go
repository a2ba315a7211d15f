// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audroom/audio"
)

// oggReader is the part of oggvorbis.Reader the source uses.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec      oggReader
	rate     int
	channels int
	done     bool
}

func (s *source) SampleRate() int { return s.rate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

// ReadSamples decodes straight into dst. oggvorbis counts interleaved
// values, not frames, so dst is trimmed to whole frames first.
func (s *source) ReadSamples(dst []float32) (int, error) {
	dst = dst[:len(dst)-len(dst)%s.channels]
	if len(dst) == 0 {
		return 0, nil
	}
	if s.done {
		return 0, io.EOF
	}

	n, err := s.dec.Read(dst)
	switch {
	case err == io.EOF:
		s.done = true
		return n, io.EOF
	case err != nil:
		return n, fmt.Errorf("vorbis: %w", err)
	case n == 0:
		s.done = true
		return 0, io.EOF
	}
	return n, nil
}

// Decoder decodes Ogg Vorbis streams with github.com/jfreymuth/oggvorbis.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis: %w", err)
	}
	return newSource(dec)
}

func newSource(dec oggReader) (*source, error) {
	if dec.Channels() < 1 || dec.SampleRate() <= 0 {
		return nil, fmt.Errorf("vorbis: %w: %d channels @ %d Hz",
			audio.ErrInvalidFormat, dec.Channels(), dec.SampleRate())
	}
	return &source{dec: dec, rate: dec.SampleRate(), channels: dec.Channels()}, nil
}
