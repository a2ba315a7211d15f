// SPDX-License-Identifier: EPL-2.0

package asset

import (
	"github.com/ik5/audroom/audio"
	"github.com/ik5/audroom/formats/aiff"
	"github.com/ik5/audroom/formats/mp3"
	"github.com/ik5/audroom/formats/vorbis"
	"github.com/ik5/audroom/formats/wav"
)

// DefaultRegistry knows every format shipped with the module.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	return r
}
