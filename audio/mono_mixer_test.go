// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"testing"

	"github.com/ik5/audroom/internal/audiotest"
)

func TestMonoMixer_Stereo(t *testing.T) {
	t.Parallel()

	src := audiotest.NewMockSource(8000, 2, 4, func(sample, channel int) float32 {
		if channel == 0 {
			return 1
		}
		return 0
	})
	m := NewMonoMixer(src)

	if m.Channels() != 1 || m.SampleRate() != 8000 {
		t.Fatalf("format = %d ch @ %d Hz", m.Channels(), m.SampleRate())
	}

	dst := make([]float32, 4)
	n, _ := m.ReadSamples(dst)
	if n != 4 {
		t.Fatalf("ReadSamples() n = %d, want 4", n)
	}
	for i, v := range dst {
		if v != 0.5 {
			t.Errorf("dst[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestMonoMixer_ManyChannels(t *testing.T) {
	t.Parallel()

	src := audiotest.NewMockSource(8000, 3, 2, func(sample, channel int) float32 {
		return float32(channel)
	})
	dst := make([]float32, 2)
	n, _ := NewMonoMixer(src).ReadSamples(dst)

	if n != 2 || dst[0] != 1 || dst[1] != 1 {
		t.Errorf("ReadSamples() = %d %v, want 2 [1 1]", n, dst)
	}
}

func TestMonoMixer_MonoPassThrough(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(8000, 1, 10, 0.3)
	dst := make([]float32, 10)
	n, _ := NewMonoMixer(src).ReadSamples(dst)

	if n != 10 || dst[9] != 0.3 {
		t.Errorf("ReadSamples() = %d, last %v", n, dst[9])
	}
}

func TestMonoMixer_EmptyDst(t *testing.T) {
	t.Parallel()

	n, err := NewMonoMixer(audiotest.NewSilentSource(8000, 2, 10)).ReadSamples(nil)
	if n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = (%d, %v)", n, err)
	}
}
