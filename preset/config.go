// SPDX-License-Identifier: EPL-2.0

package preset

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ik5/audroom/spatial"
)

// Config is the on-disk form of a catalog.
type Config struct {
	Track   string  `toml:"track"`
	IRDir   string  `toml:"ir_dir"`
	Presets []Entry `toml:"preset"`
}

type Entry struct {
	Index    int       `toml:"index"`
	Source   []float64 `toml:"source"`
	Receiver []float64 `toml:"receiver"`
	IR       string    `toml:"ir"`
}

// IRName is the conventional impulse response file name for a preset index.
func IRName(index int) string {
	return fmt.Sprintf("ir_%d44.wav", index+1)
}

// DefaultConfig is the five-room catalog the application ships with.
func DefaultConfig() Config {
	return Config{
		Track: "media/Summertime.mp3",
		IRDir: "media",
		Presets: []Entry{
			{Index: 0, Source: []float64{0.7, 0.7, 0.7}, Receiver: []float64{1.6626, 1.6166, 1.6405}},
			{Index: 1, Source: []float64{1, 0.5, 1}, Receiver: []float64{-1, 0.5, -1}},
			{Index: 2, Source: []float64{-2, 0.5, 1.5}, Receiver: []float64{2, 0.5, -1.5}},
			{Index: 3, Source: []float64{0, 1.2, -2.5}, Receiver: []float64{0.4, 1.2, 2.5}},
			{Index: 4, Source: []float64{3.5, 0.5, 3.5}, Receiver: []float64{-3.5, 0.5, -3.5}},
		},
	}
}

// Parse decodes a TOML catalog.
func Parse(r io.Reader) (Config, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q", ErrInvalidCatalog, undec[0].String())
	}
	return cfg, nil
}

// LoadFile reads a TOML catalog from disk.
func LoadFile(name string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(name, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, fmt.Errorf("%w: %s: unknown key %q", ErrInvalidCatalog, name, undec[0].String())
	}
	return cfg, nil
}

// Catalog validates the configuration and fills in conventional IR names.
func (c Config) Catalog() (*Catalog, error) {
	presets := make([]Preset, 0, len(c.Presets))
	for _, e := range c.Presets {
		src, err := toPosition(e.Source)
		if err != nil {
			return nil, fmt.Errorf("%w: preset %d source: %w", ErrInvalidCatalog, e.Index, err)
		}
		rcv, err := toPosition(e.Receiver)
		if err != nil {
			return nil, fmt.Errorf("%w: preset %d receiver: %w", ErrInvalidCatalog, e.Index, err)
		}

		ir := e.IR
		if ir == "" {
			ir = joinRef(c.IRDir, IRName(e.Index))
		}

		presets = append(presets, Preset{Index: e.Index, Source: src, Receiver: rcv, IR: ir})
	}

	return NewCatalog(c.Track, presets)
}

// joinRef appends name to dir, leaving a URI scheme's "//" intact.
func joinRef(dir, name string) string {
	if strings.Contains(dir, "://") {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	return path.Join(dir, name)
}

func toPosition(v []float64) (spatial.Position3D, error) {
	if len(v) != 3 {
		return spatial.Position3D{}, fmt.Errorf("want 3 coordinates, got %d", len(v))
	}
	return spatial.Position3D{X: v[0], Y: v[1], Z: v[2]}, nil
}
