// SPDX-License-Identifier: EPL-2.0

// Package dsp holds the sample-level math shared by the pipeline nodes:
// Catmull-Rom interpolation for the resampler, float to PCM conversion for
// the encoders and FFT overlap-add block convolution for the convolver.
package dsp
