package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stretch/internal/platform/tui"
)

var replayCmd = &cobra.Command{
	Use:   "replay <name|path>",
	Short: "Replay a recording",
	Long: `Replay a recorded session through the sandbox.

The argument is either a name from 'stretch replays' or a path to a
replay file. Live keys are ignored until the replay ends; afterwards the
sandbox continues with live input. Ctrl+C always quits.

Examples:
  stretch replay warmup
  stretch replay ./warmup.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func runReplay(_ *cobra.Command, args []string) error {
	a, err := setup(true)
	if err != nil {
		return err
	}
	defer a.Close()

	name, path, err := resolveReplay(a, args[0])
	if err != nil {
		return err
	}
	return playReplay(a, name, path)
}

// resolveReplay accepts an existing file path or an indexed name.
func resolveReplay(a *app, arg string) (name, path string, err error) {
	if info, statErr := os.Stat(arg); statErr == nil && !info.IsDir() {
		return strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg)), arg, nil
	}

	store, err := a.openStore()
	if err != nil {
		return "", "", err
	}
	defer store.Close()

	entry, err := store.ReplayByName(arg)
	if err != nil {
		return "", "", err
	}
	if entry == nil {
		return "", "", fmt.Errorf("no replay named %q, run 'stretch replays' to list them", arg)
	}
	return entry.Name, entry.Path, nil
}

func playReplay(a *app, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open replay: %w", err)
	}

	handler := a.newHandler()
	defer handler.Close()

	if err := handler.BeginReading(f); err != nil {
		return fmt.Errorf("cannot replay %s: %w", path, err)
	}
	a.logger.Info("replaying", "name", name, "path", path)

	width, height := terminalSize()
	final, err := tui.RunSandbox(tui.SandboxOptions{
		Settings: a.settings,
		Handler:  handler,
		Logger:   a.logger,
		Title:    "replay " + name,
		Width:    width,
		Height:   height,
		TickRate: a.cfg.TickRate,
	})
	if err != nil {
		return fmt.Errorf("sandbox failed: %w", err)
	}
	if err := final.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return nil
}
