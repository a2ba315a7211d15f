// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"time"
)

// Buffer is a fully decoded clip held in memory. Pipelines read it through
// independent readers, so one decoded track can feed any number of
// successive pipelines.
type Buffer struct {
	sampleRate int
	channels   int
	data       []float32
}

// NewBuffer wraps interleaved samples. data is not copied.
func NewBuffer(sampleRate, channels int, data []float32) (*Buffer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, ErrInvalidFormat
	}
	if len(data)%channels != 0 {
		return nil, ErrInvalidDstSize
	}
	return &Buffer{sampleRate: sampleRate, channels: channels, data: data}, nil
}

// ReadAll drains src into a Buffer and closes it.
func ReadAll(src Source) (*Buffer, error) {
	defer src.Close()

	if src.SampleRate() <= 0 || src.Channels() <= 0 {
		return nil, ErrInvalidFormat
	}

	size := src.BufSize()
	if size <= 0 {
		size = 4096
	}
	size -= size % src.Channels()
	if size == 0 {
		size = src.Channels()
	}

	chunk := make([]float32, size)
	var data []float32

	for {
		n, err := src.ReadSamples(chunk)
		data = append(data, chunk[:n]...)

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading source: %w", err)
		}
	}

	// Drop a trailing partial frame rather than misalign channels.
	data = data[:len(data)-len(data)%src.Channels()]
	if len(data) == 0 {
		return nil, ErrEmptyBuffer
	}

	return &Buffer{sampleRate: src.SampleRate(), channels: src.Channels(), data: data}, nil
}

func (b *Buffer) SampleRate() int { return b.sampleRate }
func (b *Buffer) Channels() int   { return b.channels }

// Frames is the clip length in frames (samples per channel).
func (b *Buffer) Frames() int { return len(b.data) / b.channels }

func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.sampleRate)
}

// Channel returns a copy of one channel as float64, the form the
// convolution kernels are built from.
func (b *Buffer) Channel(c int) []float64 {
	out := make([]float64, b.Frames())
	for i := range out {
		out[i] = float64(b.data[i*b.channels+c])
	}
	return out
}

// NewReader returns a Source positioned at the start of the clip. With loop
// set it wraps around forever instead of reporting io.EOF.
func (b *Buffer) NewReader(loop bool) Source {
	return &bufferReader{buf: b, loop: loop}
}

type bufferReader struct {
	buf  *Buffer
	pos  int
	loop bool
}

func (r *bufferReader) SampleRate() int { return r.buf.sampleRate }
func (r *bufferReader) Channels() int   { return r.buf.channels }
func (r *bufferReader) BufSize() int    { return 4096 }
func (r *bufferReader) Close() error    { return nil }

func (r *bufferReader) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.buf.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	written := 0
	for written < len(dst) {
		if r.pos >= len(r.buf.data) {
			if !r.loop || len(r.buf.data) == 0 {
				return written, io.EOF
			}
			r.pos = 0
		}
		n := copy(dst[written:], r.buf.data[r.pos:])
		r.pos += n
		written += n
	}

	if !r.loop && r.pos >= len(r.buf.data) {
		return written, io.EOF
	}
	return written, nil
}
