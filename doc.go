// SPDX-License-Identifier: EPL-2.0

// Package audroom places a sound source and a listener in a small room and
// plays a track the way the listener would hear it: attenuated by distance
// and colored by the impulse response recorded for the room.
//
// The packages underneath are usable on their own:
//
//   - spatial: positions, the 1/(1+d²) attenuation model and the position store
//   - preset: the catalog of pre-authored rooms and its TOML form
//   - asset: loading tracks and impulse responses from disk or HTTP
//   - audio: the signal chain nodes (Gain, Convolver, Resampler, MonoMixer)
//   - graph: the controller that owns the one live pipeline
//   - engine: the orchestrator driven by position and preset input
//   - sink: speaker and offline outputs
//
// New wires them together for live use:
//
//	spk, _ := sink.NewSpeaker(48000, 100*time.Millisecond)
//	eng, _ := audroom.New(preset.DefaultConfig(), spk, audroom.Options{Loop: true})
//	_ = eng.Start(ctx)
//	pending, _ := eng.SelectPreset(0)
//	_ = pending.Wait(ctx)
//
// RenderPreset does the same into a WAV file without a sound card.
package audroom
