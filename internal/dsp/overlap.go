// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// Overlap convolves a stream with a fixed kernel using FFT overlap-add.
// Input is consumed in blocks of BlockSize() samples; every Process call
// emits the same number of output samples. The kernel tail that spills past
// a block is carried into the next call, so feeding zero blocks after the
// input ends flushes it.
type Overlap struct {
	fft    *fourier.FFT
	block  int
	size   int
	kernel []complex128
	taps   int

	in    []float64
	out   []float64
	coeff []complex128
	tail  []float64
}

// NewOverlap prepares kernel h for streaming convolution. The block size is
// the next power of two >= max(len(h), minBlock) and the FFT size is twice
// that, so a single block's full linear convolution always fits.
func NewOverlap(h []float64, minBlock int) *Overlap {
	block := NextPow2(max(len(h), minBlock, 1))
	size := block * 2

	fft := fourier.NewFFT(size)

	padded := make([]float64, size)
	copy(padded, h)
	kernel := fft.Coefficients(nil, padded)

	// Sequence is unnormalised; fold 1/size into the kernel once.
	scale := complex(1/float64(size), 0)
	for i := range kernel {
		kernel[i] *= scale
	}

	return &Overlap{
		fft:    fft,
		block:  block,
		size:   size,
		kernel: kernel,
		taps:   len(h),
		in:     make([]float64, size),
		out:    make([]float64, size),
		coeff:  make([]complex128, len(kernel)),
		tail:   make([]float64, block),
	}
}

// BlockSize is the number of samples Process consumes and produces.
func (o *Overlap) BlockSize() int { return o.block }

// TailLen is the number of extra samples the convolution produces after the
// last input sample.
func (o *Overlap) TailLen() int { return max(o.taps-1, 0) }

// Process convolves one block. src shorter than the block size is zero
// padded; dst must hold at least BlockSize() samples.
func (o *Overlap) Process(dst, src []float64) {
	n := copy(o.in[:o.block], src)
	clear(o.in[n:])

	o.coeff = o.fft.Coefficients(o.coeff, o.in)
	for i, k := range o.kernel {
		o.coeff[i] *= k
	}
	o.out = o.fft.Sequence(o.out, o.coeff)

	for i := range o.block {
		dst[i] = o.out[i] + o.tail[i]
	}
	copy(o.tail, o.out[o.block:])
}

// Reset drops the carried tail.
func (o *Overlap) Reset() {
	clear(o.tail)
}
