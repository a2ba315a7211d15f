// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files with github.com/hajimehoshi/go-mp3.
//
// The dry track played through a room is typically an MP3. go-mp3 always
// produces interleaved stereo at the stream's sample rate, so the returned
// audio.Source reports two channels even for mono files:
//
//	src, err := mp3.Decoder{}.Decode(file)
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
package mp3
