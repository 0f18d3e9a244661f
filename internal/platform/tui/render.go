package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/stretch/internal/core"
	"github.com/vovakirdan/stretch/internal/tag"
)

// Palette resolves a color slot to a concrete color.
// settings.ColorMapper implements it.
type Palette interface {
	Get(t tag.Tag) core.RGB
}

// paletteStyles builds one lipgloss style per slot, all on the background color.
func paletteStyles(p Palette) map[core.ColorSlot]lipgloss.Style {
	bg := lipgloss.Color(p.Get(core.ColorBackground).Hex())
	styles := make(map[core.ColorSlot]lipgloss.Style, len(core.ColorFamily.Tags))
	for _, t := range core.ColorFamily.Tags {
		slot := t.(core.ColorSlot)
		styles[slot] = lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Get(slot).Hex())).
			Background(bg)
	}
	return styles
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen, p Palette) string {
	styles := paletteStyles(p)

	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same color for efficiency
		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := styles[startColor]
			if !ok {
				style = styles[core.ColorText]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}
