// SPDX-License-Identifier: EPL-2.0

// Command audroom moves a sound source and a listener around a room in the
// terminal and plays what the listener hears, or renders a preset to WAV.
//
//	audroom play -config presets.toml
//	audroom render -config presets.toml -preset 0 -seconds 5 -out out.wav
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/audroom"
	"github.com/ik5/audroom/preset"
)

// options shared by every subcommand.
type options struct {
	config  string // preset catalog, TOML
	base    string // base directory or URL for relative asset paths
	logFile string
	debug   bool
}

func (o *options) register(fs *flag.FlagSet, defaultLog string) {
	fs.StringVar(&o.config, "config", "", "preset catalog (TOML); built-in catalog when empty")
	fs.StringVar(&o.base, "base", "", "directory or http(s) URL relative asset paths resolve against; defaults to the catalog's directory")
	fs.StringVar(&o.logFile, "log", defaultLog, "log file, - for stderr")
	fs.BoolVar(&o.debug, "debug", false, "log at debug level")
}

// load returns the catalog configuration and the room options it implies.
func (o *options) load(log *slog.Logger) (preset.Config, audroom.Options, error) {
	opt := audroom.Options{Logger: log}

	cfg := preset.DefaultConfig()
	if o.config != "" {
		var err error
		if cfg, err = preset.LoadFile(o.config); err != nil {
			return preset.Config{}, opt, err
		}
		opt.BaseDir = filepath.Dir(o.config)
	}

	switch {
	case isURL(o.base):
		opt.BaseURL = o.base
	case o.base != "":
		opt.BaseDir = o.base
	}

	return cfg, opt, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// logger opens the log destination. The returned closer is never nil.
func (o *options) logger() (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)
	if o.logFile != "-" {
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log: %w", err)
		}
		w, closer = f, f
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: audroom <command> [flags]

commands:
  play     interactive room (mouse + keyboard)
  render   write one preset to a WAV file

Run "audroom <command> -h" for flags.
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "play":
		err = runPlay(os.Args[2:])
	case "render":
		err = runRender(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "audroom %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}
