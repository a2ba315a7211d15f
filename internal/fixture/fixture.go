// SPDX-License-Identifier: EPL-2.0

// Package fixture writes small WAV files for tests that exercise the
// loading path end to end.
package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audroom/formats/wav"
)

// WAV writes samples as a 16-bit file named name under dir and returns
// its path.
func WAV(tb testing.TB, dir, name string, sampleRate, channels int, samples []float32) string {
	tb.Helper()

	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		tb.Fatal(err)
	}

	f, err := os.Create(p)
	if err != nil {
		tb.Fatal(err)
	}
	defer f.Close()

	if err := wav.WriteFloat(f, sampleRate, channels, samples); err != nil {
		tb.Fatalf("writing %s: %v", p, err)
	}
	return p
}

// WAVBytes returns the encoded file instead of leaving it on disk.
func WAVBytes(tb testing.TB, sampleRate, channels int, samples []float32) []byte {
	tb.Helper()

	p := WAV(tb, tb.TempDir(), "fixture.wav", sampleRate, channels, samples)
	data, err := os.ReadFile(p)
	if err != nil {
		tb.Fatal(err)
	}
	return data
}

// Tone is a mono clip of frames samples at a constant level.
func Tone(frames int, level float32) []float32 {
	out := make([]float32, frames)
	for i := range out {
		out[i] = level
	}
	return out
}

// Impulse is a mono clip with a single unit sample at delay.
func Impulse(frames, delay int) []float32 {
	out := make([]float32, frames)
	out[delay] = 1
	return out
}
