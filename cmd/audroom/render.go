// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/ik5/audroom"
)

func runRender(args []string) error {
	var (
		opts    options
		index   int
		seconds float64
		out     string
	)

	fs := flag.NewFlagSet("render", flag.ExitOnError)
	opts.register(fs, "-")
	fs.IntVar(&index, "preset", 0, "preset index")
	fs.Float64Var(&seconds, "seconds", 5, "length of the render")
	fs.StringVar(&out, "out", "out.wav", "output WAV file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if seconds <= 0 {
		return fmt.Errorf("-seconds must be positive")
	}

	log, closer, err := opts.logger()
	if err != nil {
		return err
	}
	defer closer.Close()

	cfg, roomOpts, err := opts.load(log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	d := time.Duration(seconds * float64(time.Second))
	if err := audroom.RenderPreset(ctx, cfg, index, d, f, roomOpts); err != nil {
		return err
	}

	log.Info("rendered", "preset", index, "out", out, "duration", d)
	return f.Close()
}
