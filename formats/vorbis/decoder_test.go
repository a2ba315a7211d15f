// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audroom/audio"
)

// mockOgg mimics oggvorbis.Reader: Read fills up to len(p) interleaved
// values, at most chunk at a time, and reports the value count.
type mockOgg struct {
	rate     int
	channels int
	data     []float32
	chunk    int
	err      error
}

func (m *mockOgg) SampleRate() int { return m.rate }
func (m *mockOgg) Channels() int   { return m.channels }

func (m *mockOgg) Read(p []float32) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if len(m.data) == 0 {
		return 0, io.EOF
	}
	n := len(p)
	if m.chunk > 0 {
		n = min(n, m.chunk)
	}
	n = copy(p[:n], m.data)
	m.data = m.data[n:]
	return n, nil
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	in := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3, 0.4, -0.4}
	src, err := newSource(&mockOgg{rate: 48000, channels: 2, data: append([]float32(nil), in...), chunk: 4})
	if err != nil {
		t.Fatal(err)
	}

	var got []float32
	buf := make([]float32, 6)
	for {
		n, err := src.ReadSamples(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	if len(got) != len(in) {
		t.Fatalf("read %d values, want %d", len(got), len(in))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("value %d = %v, want %v", i, got[i], in[i])
		}
	}
}

func TestSource_TrimsPartialFrame(t *testing.T) {
	t.Parallel()

	src, err := newSource(&mockOgg{rate: 8000, channels: 2, data: []float32{1, 2, 3, 4}})
	if err != nil {
		t.Fatal(err)
	}

	n, err := src.ReadSamples(make([]float32, 3))
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != 2 {
		t.Errorf("ReadSamples() = %d, want 2", n)
	}
}

func TestSource_Errors(t *testing.T) {
	t.Parallel()

	src, err := newSource(&mockOgg{rate: 8000, channels: 1, err: io.ErrUnexpectedEOF})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want wrapped io.ErrUnexpectedEOF", err)
	}

	if _, err := newSource(&mockOgg{rate: 8000, channels: 0}); !errors.Is(err, audio.ErrInvalidFormat) {
		t.Errorf("newSource() error = %v, want ErrInvalidFormat", err)
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for name, data := range map[string][]byte{
		"garbage": []byte("This is not Ogg Vorbis data"),
		"empty":   {},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(data)); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}
