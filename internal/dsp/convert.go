// SPDX-License-Identifier: EPL-2.0

package dsp

import "math"

// Float32ToInt16 converts a sample in [-1,1] to 16-bit PCM, clamping values
// outside that range. The negative side uses the full int16 range.
func Float32ToInt16(x float32) int16 {
	switch {
	case x >= 1:
		return math.MaxInt16
	case x <= -1:
		return math.MinInt16
	case x < 0:
		return int16(x * 32768)
	default:
		return int16(x * 32767)
	}
}

// IntScale is the divisor that maps a signed PCM integer of the given bit
// depth into [-1,1). Unknown depths fall back to 16-bit.
func IntScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 1 << 7
	case 24:
		return 1 << 23
	case 32:
		return 1 << 31
	default:
		return 1 << 15
	}
}

// NextPow2 returns the smallest power of two >= n (and at least 1).
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
