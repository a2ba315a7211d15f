// SPDX-License-Identifier: EPL-2.0

// Package engine ties positions, presets and the audio graph together.
//
// Position writes go through the engine's spatial.Store. Each write
// recomputes the attenuation and ramps the live pipeline's gain to it;
// that path never builds or tears down pipelines.
//
// SelectPreset moves both markers to the preset's positions and loads its
// impulse response in the background. When the load completes, the old
// pipeline is torn down, the new one is connected with the gain of the
// positions current at that moment, and playback starts. A newer selection
// cancels an older one; the older result is dropped when it arrives.
// A failed load is reported on Unavailable and the current audio is left
// alone.
package engine
