package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stretch/internal/core"
	"github.com/vovakirdan/stretch/internal/settings"
)

// settingsCommand describes one mapper exposed on the command line.
type settingsCommand[T comparable] struct {
	use    string
	short  string
	long   string
	mapper func(b *settings.Bundle) *settings.Mapper[T]
	format func(T) string
	parse  func(string) (T, error)
}

var keysCmd = newSettingsCmd(settingsCommand[core.Binding]{
	use:   "keys",
	short: "Show or change key bindings",
	long: `Key bindings use names like w, space, up, esc, ctrl+r or alt+shift+x.
An empty value in the saved file unbinds an input.

Examples:
  stretch keys list
  stretch keys set jump ctrl+space
  stretch keys unset jump
  stretch keys reset`,
	mapper: func(b *settings.Bundle) *settings.Mapper[core.Binding] { return b.Inputs.Mapper },
	format: core.Binding.String,
	parse:  core.ParseBinding,
})

var colorsCmd = newSettingsCmd(settingsCommand[core.RGB]{
	use:   "colors",
	short: "Show or change colors",
	long: `Colors are 24-bit hex values such as #ff8800.
Colors always resolve, so they can be changed but not unset.

Examples:
  stretch colors list
  stretch colors set box '#ff8800'`,
	mapper: func(b *settings.Bundle) *settings.Mapper[core.RGB] { return b.Colors },
	format: core.RGB.Hex,
	parse:  core.ParseRGB,
})

var paramsCmd = newSettingsCmd(settingsCommand[float64]{
	use:   "params",
	short: "Show or change parameters",
	long: `Parameters are numbers that tune the sandbox.

Examples:
  stretch params list
  stretch params set resize-step 2
  stretch params set tick-rate 60
  stretch params unset tick-rate`,
	mapper: func(b *settings.Bundle) *settings.Mapper[float64] { return b.Params.Mapper },
	format: func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) },
	parse:  func(s string) (float64, error) { return strconv.ParseFloat(s, 64) },
})

// newSettingsCmd builds the list/set/unset/reset command tree for one mapper.
func newSettingsCmd[T comparable](sc settingsCommand[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   sc.use,
		Short: sc.short,
		Long:  sc.long,
	}

	// withMapper runs fn against the mapper with the settings open.
	withMapper := func(fn func(m *settings.Mapper[T]) error) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(sc.mapper(a.settings))
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every " + sc.use + " entry",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withMapper(func(m *settings.Mapper[T]) error {
				printEntries(m, sc.format)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <name> <value>",
		Short: "Override one entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return withMapper(func(m *settings.Mapper[T]) error {
				t, ok := m.Table().Lookup(args[0])
				if !ok {
					return fmt.Errorf("unknown %s entry %q", sc.use, args[0])
				}
				v, err := sc.parse(args[1])
				if err != nil {
					return err
				}
				m.Set(t, v)
				fmt.Printf("%s = %s\n", t, sc.format(v))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unset <name>",
		Short: "Remove one override",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withMapper(func(m *settings.Mapper[T]) error {
				if !m.AllowUnset() {
					return fmt.Errorf("%s cannot be unset, set a value instead", sc.use)
				}
				t, ok := m.Table().Lookup(args[0])
				if !ok {
					return fmt.Errorf("unknown %s entry %q", sc.use, args[0])
				}
				m.Unset(t)
				if v, ok := m.Lookup(t); ok {
					fmt.Printf("%s = %s (default)\n", t, sc.format(v))
				} else {
					fmt.Printf("%s is unset\n", t)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Remove every override",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withMapper(func(m *settings.Mapper[T]) error {
				if !m.AllowUnset() {
					return fmt.Errorf("%s cannot be reset, set values instead", sc.use)
				}
				m.Reset()
				fmt.Printf("%s reset to defaults\n", sc.use)
				return nil
			})
		},
	})

	return cmd
}

func printEntries[T comparable](m *settings.Mapper[T], format func(T) string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  NAME\tVALUE\tSOURCE")
	for _, t := range m.Table().Tags() {
		value, source := "-", "unset"
		if v, ok := m.Lookup(t); ok {
			value = format(v)
			source = "default"
			if m.IsUserSet(t) {
				source = "custom"
			}
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", t, value, source)
	}
	w.Flush()
}
