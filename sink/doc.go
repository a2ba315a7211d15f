// SPDX-License-Identifier: EPL-2.0

// Package sink provides the outputs a pipeline plays into. Speaker drives
// the sound card through github.com/gopxl/beep; Offline is pulled by the
// caller and backs offline renders and tests.
//
// Both convert whatever they are given to their own rate and channel
// count, so a mono 22.05 kHz track plays unchanged on a 48 kHz stereo
// device.
package sink
