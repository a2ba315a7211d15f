// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
		tolerance      float32
	}{
		{name: "start returns y1", y0: 0, y1: 1, y2: 2, y3: 3, x: 0, want: 1, tolerance: 1e-6},
		{name: "end returns y2", y0: 0, y1: 1, y2: 2, y3: 3, x: 1, want: 2, tolerance: 1e-5},
		{name: "linear ramp stays linear", y0: 1, y1: 2, y2: 3, y3: 4, x: 0.25, want: 2.25, tolerance: 1e-5},
		{name: "symmetric crossing", y0: -1, y1: -0.5, y2: 0.5, y3: 1, x: 0.5, want: 0, tolerance: 1e-5},
		{name: "silence", y0: 0, y1: 0, y2: 0, y3: 0, x: 0.7, want: 0, tolerance: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if diff := float32(math.Abs(float64(got - tt.want))); diff > tt.tolerance {
				t.Errorf("CubicInterpolate() = %v, want %v (diff %v)", got, tt.want, diff)
			}
		})
	}
}

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1, math.MaxInt16},
		{-1, math.MinInt16},
		{1.5, math.MaxInt16},
		{-7, math.MinInt16},
		{0.5, 16383},
		{-0.5, -16384},
	}

	for _, tt := range tests {
		if got := Float32ToInt16(tt.in); got != tt.want {
			t.Errorf("Float32ToInt16(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestIntScale(t *testing.T) {
	t.Parallel()

	tests := map[int]float32{
		8:  128,
		16: 32768,
		24: 8388608,
		32: 2147483648,
		12: 32768,
	}

	for depth, want := range tests {
		if got := IntScale(depth); got != want {
			t.Errorf("IntScale(%d) = %v, want %v", depth, got, want)
		}
	}
}

func TestNextPow2(t *testing.T) {
	t.Parallel()

	tests := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 255: 256, 256: 256, 257: 512}
	for in, want := range tests {
		if got := NextPow2(in); got != want {
			t.Errorf("NextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}

// directConvolve is the O(n*m) reference the FFT path is checked against.
func directConvolve(x, h []float64) []float64 {
	out := make([]float64, len(x)+len(h)-1)
	for i, xv := range x {
		for j, hv := range h {
			out[i+j] += xv * hv
		}
	}
	return out
}

func TestOverlap_MatchesDirectConvolution(t *testing.T) {
	t.Parallel()

	h := []float64{0.5, -0.25, 0.125, 0.3, -0.1}
	x := make([]float64, 50)
	for i := range x {
		x[i] = math.Sin(float64(i) * 0.37)
	}

	o := NewOverlap(h, 8)
	block := o.BlockSize()
	if block != 8 {
		t.Fatalf("BlockSize() = %d, want 8", block)
	}

	want := directConvolve(x, h)
	var got []float64
	dst := make([]float64, block)

	for off := 0; off < len(x)+o.TailLen(); off += block {
		var src []float64
		if off < len(x) {
			src = x[off:min(off+block, len(x))]
		}
		o.Process(dst, src)
		got = append(got, dst...)
	}

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOverlap_UnitImpulseIsIdentity(t *testing.T) {
	t.Parallel()

	o := NewOverlap([]float64{1}, 4)
	src := []float64{0.1, 0.2, 0.3, 0.4}
	dst := make([]float64, 4)
	o.Process(dst, src)

	for i := range src {
		if math.Abs(dst[i]-src[i]) > 1e-12 {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], src[i])
		}
	}
	if o.TailLen() != 0 {
		t.Errorf("TailLen() = %d, want 0", o.TailLen())
	}
}

func TestOverlap_Reset(t *testing.T) {
	t.Parallel()

	o := NewOverlap([]float64{0, 0, 0, 1}, 4)
	dst := make([]float64, 4)
	o.Process(dst, []float64{1, 1, 1, 1})
	o.Reset()
	o.Process(dst, nil)

	for i, v := range dst {
		if math.Abs(v) > 1e-12 {
			t.Errorf("dst[%d] = %v after Reset, want 0", i, v)
		}
	}
}

func BenchmarkOverlap_Process(b *testing.B) {
	h := make([]float64, 22050)
	h[0] = 1
	o := NewOverlap(h, 1024)
	src := make([]float64, o.BlockSize())
	dst := make([]float64, o.BlockSize())

	b.ReportAllocs()
	for b.Loop() {
		o.Process(dst, src)
	}
}
