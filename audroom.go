// SPDX-License-Identifier: EPL-2.0

package audroom

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ik5/audroom/asset"
	"github.com/ik5/audroom/engine"
	"github.com/ik5/audroom/formats/wav"
	"github.com/ik5/audroom/graph"
	"github.com/ik5/audroom/preset"
	"github.com/ik5/audroom/sink"
)

// RenderRate is the sample rate of offline renders.
const RenderRate = 44100

type Options struct {
	Logger *slog.Logger
	// BaseDir resolves relative asset paths; BaseURL, when set, resolves
	// them against a web server instead.
	BaseDir    string
	BaseURL    string
	HTTPClient *http.Client
	// RampWindow is the gain ramp length; zero means 100 ms.
	RampWindow time.Duration
	// Loop repeats the track.
	Loop bool
}

// New builds an engine for cfg that plays into out.
func New(cfg preset.Config, out graph.Sink, opt Options) (*engine.Engine, error) {
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}

	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}

	loader, err := asset.New(asset.Options{
		BaseDir:    opt.BaseDir,
		BaseURL:    opt.BaseURL,
		HTTPClient: opt.HTTPClient,
		Logger:     log.With("component", "asset"),
	})
	if err != nil {
		return nil, err
	}

	ctrl := graph.NewController(loader, out, graph.Options{
		Logger:     log.With("component", "graph"),
		RampWindow: opt.RampWindow,
		Loop:       opt.Loop,
	})

	return engine.New(catalog, ctrl, engine.Options{Logger: log.With("component", "engine")}), nil
}

// RenderPreset plays preset index for duration into an offline sink and
// writes the result to w as 16-bit stereo WAV at RenderRate.
func RenderPreset(ctx context.Context, cfg preset.Config, index int, duration time.Duration, w io.WriteSeeker, opt Options) error {
	out, err := sink.NewOffline(RenderRate, 2)
	if err != nil {
		return err
	}

	eng, err := New(cfg, out, opt)
	if err != nil {
		return err
	}
	defer eng.Close()

	pending, err := eng.SelectPreset(index)
	if err != nil {
		return err
	}
	if err := pending.Wait(ctx); err != nil {
		return fmt.Errorf("preset %d: %w", index, err)
	}

	frames := int(duration.Seconds() * RenderRate)
	samples := make([]float32, frames*2)
	const chunk = 4096 * 2
	for off := 0; off < len(samples); off += chunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		out.Pull(samples[off:min(off+chunk, len(samples))])
	}
	if err := out.Err(); err != nil {
		return fmt.Errorf("rendering preset %d: %w", index, err)
	}

	return wav.WriteFloat(w, RenderRate, 2, samples)
}
