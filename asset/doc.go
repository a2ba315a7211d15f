// SPDX-License-Identifier: EPL-2.0

// Package asset fetches and decodes the audio files the room plays: the dry
// track and the impulse responses. Local paths, file:// URIs and http(s)
// URLs all go through the same Load call and come back as a fully decoded
// audio.Buffer.
package asset
