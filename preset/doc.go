// SPDX-License-Identifier: EPL-2.0

// Package preset describes the pre-authored room configurations. Each
// Preset pairs fixed source and receiver positions with the impulse
// response recorded for them. A Catalog is validated once when it is built
// and is read-only afterwards.
//
// Catalogs are usually loaded from TOML:
//
//	track = "media/Summertime.mp3"
//	ir_dir = "media"
//
//	[[preset]]
//	index = 0
//	source = [0.7, 0.7, 0.7]
//	receiver = [1.6626, 1.6166, 1.6405]
//
// A preset without an explicit ir takes the conventional name
// ir_<index+1>44.wav under ir_dir.
package preset
