package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/stretch/internal/tag"
)

// FamilyColor is the family id of the color slots.
const FamilyColor = "color"

// RGB is a packed 0xRRGGBB color.
type RGB uint32

// Black is the fallback for unresolved colors.
const Black RGB = 0x000000

// Hex formats the color as "#rrggbb", which lipgloss accepts directly.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xFFFFFF)
}

// String implements fmt.Stringer.
func (c RGB) String() string {
	return c.Hex()
}

// ParseRGB accepts "#rrggbb", "rrggbb" or "0xrrggbb".
func ParseRGB(s string) (RGB, error) {
	h := strings.TrimSpace(s)
	h = strings.TrimPrefix(h, "#")
	h = strings.TrimPrefix(strings.TrimPrefix(h, "0x"), "0X")
	if len(h) != 6 {
		return 0, fmt.Errorf("core: color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("core: color %q: %w", s, err)
	}
	return RGB(v), nil
}

// ColorSlot names a themable color of the playfield.
type ColorSlot int

const (
	ColorBackground ColorSlot = iota
	ColorWall
	ColorPlayer
	ColorBox
	ColorBoxSelected
	ColorGoal
	ColorText
	ColorHUD
)

func (ColorSlot) Family() string { return FamilyColor }

// String returns the canonical name for the slot.
func (c ColorSlot) String() string {
	switch c {
	case ColorBackground:
		return "background"
	case ColorWall:
		return "wall"
	case ColorPlayer:
		return "player"
	case ColorBox:
		return "box"
	case ColorBoxSelected:
		return "box-selected"
	case ColorGoal:
		return "goal"
	case ColorText:
		return "text"
	case ColorHUD:
		return "hud"
	default:
		return "unknown"
	}
}

// ColorFamily declares all color slots.
var ColorFamily = tag.NewFamily(FamilyColor,
	ColorBackground, ColorWall, ColorPlayer, ColorBox,
	ColorBoxSelected, ColorGoal, ColorText, ColorHUD,
)
