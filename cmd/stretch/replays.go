package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/stretch/internal/platform/tui"
)

var (
	flagBrowse bool
	flagLimit  int
)

var replaysCmd = &cobra.Command{
	Use:   "replays",
	Short: "List recorded replays",
	Long: `Display the most recent recordings.

With --browse, opens an interactive table: Enter plays the selected
replay, X removes it from the index.

Examples:
  stretch replays
  stretch replays --limit 50
  stretch replays --browse`,
	Args: cobra.NoArgs,
	RunE: runReplays,
}

func init() {
	replaysCmd.Flags().BoolVar(&flagBrowse, "browse", false, "Browse replays interactively")
	replaysCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of replays to list")
}

func runReplays(_ *cobra.Command, _ []string) error {
	a, err := setup(flagBrowse)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if flagBrowse {
		width, height := terminalSize()
		name, err := tui.RunReplayBrowser(store, width, height)
		if err != nil || name == "" {
			return err
		}
		entry, err := store.ReplayByName(name)
		if err != nil || entry == nil {
			return err
		}
		return playReplay(a, entry.Name, entry.Path)
	}

	entries, err := store.RecentReplays(flagLimit)
	if err != nil {
		return err
	}

	fmt.Println("Replays")
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No replays recorded yet.")
		fmt.Println()
		fmt.Println("Run 'stretch play --record <name>' to record one!")
		return nil
	}

	maxName := 4 // "Name" header
	for _, e := range entries {
		maxName = max(maxName, len(e.Name))
	}

	fmt.Printf("  %-*s  %8s  %s\n", maxName, "Name", "Frames", "Recorded")
	fmt.Printf("  %-*s  %8s  %s\n", maxName, "----", "------", "--------")

	now := time.Now()
	total := 0
	for _, e := range entries {
		fmt.Printf("  %-*s  %8s  %s\n", maxName, e.Name, humanize.Comma(int64(e.Frames)), e.Age(now))
		total += e.Frames
	}

	fmt.Println()
	fmt.Printf("%s frames across %d replays\n", humanize.Comma(int64(total)), len(entries))
	return nil
}
