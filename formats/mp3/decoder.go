// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audroom/audio"
)

// go-mp3 always yields interleaved stereo, 16-bit little-endian.
const (
	outChannels    = 2
	bytesPerSample = 2
)

// pcmReader is the part of gomp3.Decoder the source uses; tests substitute it.
type pcmReader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec  pcmReader
	rate int
	buf  []byte
	// carry holds a trailing half sample from the previous read.
	carry []byte
	done  bool
}

func newSource(dec pcmReader) *source {
	return &source{
		dec:   dec,
		rate:  dec.SampleRate(),
		buf:   make([]byte, 8192),
		carry: make([]byte, 0, bytesPerSample),
	}
}

func (s *source) SampleRate() int { return s.rate }
func (s *source) Channels() int   { return outChannels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / bytesPerSample }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.done {
		return 0, io.EOF
	}

	need := len(dst)*bytesPerSample - len(s.carry)
	if cap(s.buf) < need+len(s.carry) {
		s.buf = make([]byte, need+len(s.carry))
	}
	buf := s.buf[:len(s.carry)+need]
	copy(buf, s.carry)

	m, err := s.dec.Read(buf[len(s.carry):])
	total := len(s.carry) + m
	samples := total / bytesPerSample

	for i := range samples {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(buf[i*bytesPerSample:]))) / 32768
	}
	s.carry = append(s.carry[:0], buf[samples*bytesPerSample:total]...)

	switch {
	case err == io.EOF:
		s.done = true
		if samples == 0 {
			return 0, io.EOF
		}
		return samples, io.EOF
	case err != nil:
		return samples, fmt.Errorf("mp3: %w", err)
	}
	return samples, nil
}

// Decoder decodes MPEG-1/2 Layer III streams with github.com/hajimehoshi/go-mp3.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	return newSource(dec), nil
}
