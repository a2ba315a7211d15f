// SPDX-License-Identifier: EPL-2.0

package preset

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/ik5/audroom/spatial"
)

// Preset is one room configuration. IR locates the impulse response asset
// and is passed to the asset loader unchanged.
type Preset struct {
	Index    int
	Source   spatial.Position3D
	Receiver spatial.Position3D
	IR       string
}

// Positions returns the pair in the form the position store takes.
func (p Preset) Positions() spatial.Positions {
	return spatial.Positions{Source: p.Source, Receiver: p.Receiver}
}

// Catalog is an immutable, ordered set of presets with indices 0..N-1.
type Catalog struct {
	track   string
	presets []Preset
}

// NewCatalog validates and orders presets. Entries may be given in any
// order but their indices must be unique and cover 0..N-1 with no gaps.
func NewCatalog(track string, presets []Preset) (*Catalog, error) {
	if track == "" {
		return nil, fmt.Errorf("%w: no track", ErrInvalidCatalog)
	}
	if len(presets) == 0 {
		return nil, fmt.Errorf("%w: no presets", ErrInvalidCatalog)
	}

	sorted := slices.Clone(presets)
	slices.SortStableFunc(sorted, func(a, b Preset) int { return cmp.Compare(a.Index, b.Index) })

	for i, p := range sorted {
		switch {
		case i > 0 && p.Index == sorted[i-1].Index:
			return nil, fmt.Errorf("%w: duplicate index %d", ErrInvalidCatalog, p.Index)
		case p.Index != i:
			return nil, fmt.Errorf("%w: index %d where %d was expected", ErrInvalidCatalog, p.Index, i)
		case p.IR == "":
			return nil, fmt.Errorf("%w: preset %d has no impulse response", ErrInvalidCatalog, i)
		case !p.Source.IsFinite() || !p.Receiver.IsFinite():
			return nil, fmt.Errorf("%w: preset %d has a non-finite position", ErrInvalidCatalog, i)
		}
	}

	return &Catalog{track: track, presets: sorted}, nil
}

// Track is the dry recording every preset plays.
func (c *Catalog) Track() string { return c.track }

func (c *Catalog) Len() int { return len(c.presets) }

func (c *Catalog) Get(index int) (Preset, error) {
	if index < 0 || index >= len(c.presets) {
		return Preset{}, fmt.Errorf("%w: %d not in [0, %d]", ErrIndexOutOfRange, index, len(c.presets)-1)
	}
	return c.presets[index], nil
}

// All returns the presets in index order. The slice is a copy.
func (c *Catalog) All() []Preset {
	return slices.Clone(c.presets)
}
