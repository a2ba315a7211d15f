// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audroom/internal/dsp"
)

const writeChunk = 8192

// WriteWAV16 writes interleaved 16-bit PCM samples as a WAV file. The
// header sizes are patched on close, which is why w has to seek.
func WriteWAV16(w io.WriteSeeker, sampleRate, channels int, samples []int16) error {
	if channels <= 0 || len(samples)%channels != 0 {
		return ErrInvalidSampleLayout
	}

	enc := gowav.NewEncoder(w, sampleRate, 16, channels, formatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, 0, min(len(samples), writeChunk)),
	}

	for i := 0; i < len(samples); i += writeChunk {
		chunk := samples[i:min(i+writeChunk, len(samples))]

		buf.Data = buf.Data[:len(chunk)]
		for j, s := range chunk {
			buf.Data[j] = int(s)
		}

		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("writing wav samples: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}

// WriteFloat converts interleaved float32 samples (clamped to [-1,1]) to
// 16-bit PCM and writes them with WriteWAV16.
func WriteFloat(w io.WriteSeeker, sampleRate, channels int, samples []float32) error {
	pcm16 := make([]int16, len(samples))
	for i, v := range samples {
		pcm16[i] = dsp.Float32ToInt16(v)
	}
	return WriteWAV16(w, sampleRate, channels, pcm16)
}
