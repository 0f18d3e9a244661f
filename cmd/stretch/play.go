package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stretch/internal/input"
	"github.com/vovakirdan/stretch/internal/platform/tui"
)

var flagRecord string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the sandbox",
	Long: `Start the sandbox with live input.

Default controls (see 'stretch keys list'):
  W/A/S/D    - Move the box
  I/J/K/L    - Select the top, left, bottom or right side
  Arrows     - Stretch the selected side (only along its axis)
  P          - Pause
  R          - Restart
  U          - Undo
  Esc        - Toggle full help
  Q/Ctrl+C   - Quit

With --record, every frame of input is written to the replay directory
and indexed under the given name.

Examples:
  stretch play
  stretch play --record warmup`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagRecord, "record", "", "Record the session under this name")
}

func runPlay(_ *cobra.Command, _ []string) error {
	if flagRecord != "" {
		if err := validReplayName(flagRecord); err != nil {
			return err
		}
	}

	a, err := setup(true)
	if err != nil {
		return err
	}
	defer a.Close()

	handler := a.newHandler()
	defer handler.Close()

	title := "live"
	var path string
	if flagRecord != "" {
		path, err = startRecording(a, handler, flagRecord)
		if err != nil {
			return err
		}
		title = "recording " + flagRecord
	}

	width, height := terminalSize()
	if _, err := tui.RunSandbox(tui.SandboxOptions{
		Settings: a.settings,
		Handler:  handler,
		Logger:   a.logger,
		Title:    title,
		Width:    width,
		Height:   height,
		TickRate: a.cfg.TickRate,
	}); err != nil {
		return fmt.Errorf("sandbox failed: %w", err)
	}

	if flagRecord == "" {
		return nil
	}
	return finishRecording(a, handler, flagRecord, path)
}

func validReplayName(name string) error {
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid replay name %q", name)
	}
	return nil
}

func startRecording(a *app, handler *input.Handler, name string) (string, error) {
	if err := os.MkdirAll(a.cfg.ReplayDir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create replay directory: %w", err)
	}
	path := filepath.Join(a.cfg.ReplayDir, name+".yaml")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("cannot create replay: %w", err)
	}
	if err := handler.BeginWriting(f); err != nil {
		return "", err
	}
	return path, nil
}

// finishRecording closes the stream and indexes it. An aborted recording
// is left on disk but not indexed.
func finishRecording(a *app, handler *input.Handler, name, path string) error {
	if handler.Mode() != input.ModeRecording {
		fmt.Fprintf(os.Stderr, "Warning: recording %q was aborted, see the log\n", name)
		return nil
	}

	frames := handler.Frame()
	if err := handler.EndWriting(); err != nil {
		return fmt.Errorf("cannot finish recording: %w", err)
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.SaveReplay(name, path, frames); err != nil {
		return err
	}
	fmt.Printf("Recorded %d frames as %q\n", frames, name)
	return nil
}
