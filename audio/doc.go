// SPDX-License-Identifier: EPL-2.0

// Package audio provides the signal-chain building blocks of a room
// pipeline.
//
// Everything is a Source: decoders, in-memory clips and processing nodes
// share the same pull interface so they can be chained:
//
//	track, _ := audio.ReadAll(decodedTrack)    // *Buffer, decoded once
//	dry := track.NewReader(true)               // looping reader
//	wet, _ := audio.NewConvolver(dry, irBuf)   // room colouring
//	out := audio.NewGain(wet, 0.11, audio.DefaultRampWindow)
//
// # Nodes
//
//   - Buffer holds a decoded clip; NewReader gives independent cursors.
//   - Resampler changes the sample rate with Catmull-Rom interpolation.
//   - MonoMixer averages all channels into one.
//   - Gain applies a linear gain and ramps target changes over a fixed
//     window so that updates never click.
//   - Convolver applies an impulse response with FFT overlap-add and plays
//     out the reverb tail after the dry input ends.
//
// # Format Registry
//
// Registry maps file extensions to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, ok := registry.ForPath("media/ir_144.wav")
//
// # Sample Format
//
// Samples are interleaved float32, nominally in [-1.0, 1.0]. Nodes do not
// clip; the encoders and sinks clamp on output.
//
// # Error Handling
//
// ReadSamples returns io.EOF when the stream is finished, possibly together
// with a final n > 0:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    process(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
