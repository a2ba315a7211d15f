// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files with github.com/go-audio/aiff.
//
// Some impulse-response libraries ship AIFF rather than WAV. Integer PCM at
// 8, 16, 24 and 32 bits is accepted; samples are normalised to float32 by
// bit depth:
//
//	src, err := aiff.Decoder{}.Decode(file)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    // not FORM/AIFF
//	}
//
// go-audio needs an io.ReadSeeker; other readers are buffered in memory
// first.
package aiff
