// stretch is a terminal sandbox for moving and stretching a box, with
// rebindable keys, themable colors, tunable parameters and input replays.
//
// Usage:
//
//	stretch play [--record name]   - Play in the sandbox, optionally recording
//	stretch replay <name|path>     - Replay a recording
//	stretch replays [--browse]     - List recorded replays
//	stretch keys list|set|unset|reset
//	stretch colors list|set|unset|reset
//	stretch params list|set|unset|reset
//	stretch serve                  - Serve the sandbox over SSH
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.stretch/config.yaml)
//	--log-level <lvl>   - debug, info, warn or error
//	--save-dir <dir>    - Where customized settings are saved
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/stretch/internal/config"
	"github.com/vovakirdan/stretch/internal/input"
	"github.com/vovakirdan/stretch/internal/settings"
	"github.com/vovakirdan/stretch/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagLogLevel string
	flagSaveDir  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stretch",
	Short: "stretch - move and stretch a box in your terminal",
	Long: `stretch is a small terminal sandbox built around rebindable input.

Select a side of the box, then stretch or shrink it along that side's axis.
Every session can be recorded and replayed frame by frame.

Available commands:
  play     - Play in the sandbox
  replay   - Replay a recording
  replays  - List or browse recordings
  keys     - Show or change key bindings
  colors   - Show or change colors
  params   - Show or change parameters
  serve    - Start SSH server for remote play

Examples:
  stretch play
  stretch play --record warmup
  stretch replay warmup
  stretch keys set quit x
  stretch colors set box '#ff8800'
  stretch params set resize-step 2`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagSaveDir, "save-dir", "", "Directory for customized settings")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(replaysCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(colorsCmd)
	rootCmd.AddCommand(paramsCmd)
	rootCmd.AddCommand(serveCmd)
}

// app holds what every command needs: configuration, a logger and the
// settings mappers.
type app struct {
	cfg      config.App
	logger   *log.Logger
	settings *settings.Bundle
	closers  []io.Closer
}

// setup loads configuration and opens the settings. Interactive commands
// log to a file so the alternate screen stays clean.
func setup(interactive bool) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagSaveDir != "" {
		cfg.SaveDir = flagSaveDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	var w io.Writer = os.Stderr
	if interactive {
		f, err := openLogFile(cfg.DataDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v, logging disabled\n", err)
			w = io.Discard
		} else {
			w = f
			a.closers = append(a.closers, f)
		}
	}
	a.logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "stretch",
		Level:           cfg.Level(),
	})

	bundle, err := settings.Open(cfg.SaveDir, a.logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("cannot open settings: %w", err)
	}
	a.settings = bundle
	return a, nil
}

func openLogFile(dataDir string) (*os.File, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", dataDir, err)
	}
	path := filepath.Join(dataDir, "stretch.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file: %w", err)
	}
	return f, nil
}

// Close releases the settings and the log file.
func (a *app) Close() {
	if a.settings != nil {
		a.settings.Close()
	}
	for _, c := range a.closers {
		c.Close()
	}
}

// newHandler creates an input handler decoding through the current bindings.
func (a *app) newHandler() *input.Handler {
	return input.NewHandler(a.settings.Inputs, input.Options{
		QueueSize: a.cfg.QueueSize,
		Step:      a.settings.Params.ResizeStep,
		Logger:    a.logger.With("component", "input"),
	})
}

func (a *app) openStore() (*storage.Store, error) {
	store, err := storage.Open(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open replay index: %w", err)
	}
	return store, nil
}

// terminalSize returns the size of stdout, or 80x24 if it is not a terminal.
func terminalSize() (int, int) {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return width, height
}
