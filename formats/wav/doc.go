// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes RIFF/WAVE files using github.com/go-audio/wav.
//
// Impulse responses are usually distributed as WAV, often at 24-bit and in
// WAVE_FORMAT_EXTENSIBLE containers, so the decoder accepts integer PCM at
// 16, 24 and 32 bits in any channel count. Samples come out of the returned
// audio.Source as float32 in [-1.0, 1.0).
//
//	src, err := wav.Decoder{}.Decode(file)
//	if errors.Is(err, wav.ErrNotWavFile) {
//	    // not RIFF/WAVE
//	}
//
// Offline renders are written with WriteWAV16 or WriteFloat. The encoder
// patches the RIFF sizes when it finishes, so the destination must be an
// io.WriteSeeker such as *os.File.
package wav
