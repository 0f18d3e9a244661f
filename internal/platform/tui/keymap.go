package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/stretch/internal/core"
	"github.com/vovakirdan/stretch/internal/tag"
)

// KeyEventFromMsg translates a Bubble Tea key message to a key press.
// Pastes and unparsable keys are rejected.
func KeyEventFromMsg(msg tea.KeyMsg) (core.KeyEvent, bool) {
	if msg.Paste || (msg.Type == tea.KeyRunes && len(msg.Runes) != 1) {
		return core.KeyEvent{}, false
	}

	b, err := core.ParseBinding(msg.String())
	if err != nil || b.IsZero() {
		return core.KeyEvent{}, false
	}
	return core.KeyEvent{Binding: b, Pressed: true}, true
}

// KeySink receives key events. input.Handler implements it.
type KeySink interface {
	KeyPressed(ev core.KeyEvent) bool
	KeyReleased(ev core.KeyEvent) bool
}

// SendKey forwards msg to dst as a press followed by a release.
// Terminals never report releases, so held movement lasts exactly as long
// as the terminal keeps repeating the key.
func SendKey(dst KeySink, msg tea.KeyMsg) bool {
	ev, ok := KeyEventFromMsg(msg)
	if !ok {
		return false
	}
	dst.KeyPressed(ev)
	ev.Pressed = false
	dst.KeyReleased(ev)
	return true
}

// BindingSource lists the current key for each logical input.
// settings.InputMapper implements it.
type BindingSource interface {
	Lookup(t tag.Tag) (core.Binding, bool)
}

// quitKey always quits, whatever the user bound.
var quitKey = key.NewBinding(
	key.WithKeys("ctrl+c"),
	key.WithHelp("ctrl+c", "quit"),
)

// helpText is the short description shown for each input.
var helpText = map[tag.Tag]string{
	core.MoveUp:      "move up",
	core.MoveDown:    "move down",
	core.MoveLeft:    "move left",
	core.MoveRight:   "move right",
	core.MoveJump:    "jump",
	core.North:       "select top",
	core.South:       "select bottom",
	core.East:        "select right",
	core.West:        "select left",
	core.GrowUp:      "stretch up",
	core.GrowDown:    "stretch down",
	core.GrowLeft:    "stretch left",
	core.GrowRight:   "stretch right",
	core.MetaPause:   "pause",
	core.MetaRestart: "restart",
	core.MetaUndo:    "undo",
	core.MetaMenu:    "help",
	core.MetaQuit:    "quit",
}

// shortHelp picks the inputs shown in the one-line help.
var shortHelp = map[tag.Tag]bool{
	core.MoveUp:   true,
	core.North:    true,
	core.GrowUp:   true,
	core.MetaMenu: true,
	core.MetaQuit: true,
}

// HelpKeyMap is a bubbles help.KeyMap built from the live input bindings.
type HelpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HelpKeyMap) ShortHelp() []key.Binding {
	return k.short
}

// FullHelp returns key bindings for the full help view, one column per family.
func (k HelpKeyMap) FullHelp() [][]key.Binding {
	return k.full
}

// NewHelpKeyMap snapshots the current bindings. Unbound inputs are omitted.
func NewHelpKeyMap(src BindingSource) HelpKeyMap {
	var k HelpKeyMap
	for _, fam := range core.InputFamilies() {
		var column []key.Binding
		for _, t := range fam.Tags {
			b, ok := src.Lookup(t)
			if !ok || b.IsZero() {
				continue
			}
			kb := key.NewBinding(
				key.WithKeys(b.String()),
				key.WithHelp(b.String(), helpText[t]),
			)
			column = append(column, kb)
			if shortHelp[t] {
				k.short = append(k.short, kb)
			}
		}
		if len(column) > 0 {
			k.full = append(k.full, column)
		}
	}
	k.short = append(k.short, quitKey)
	k.full = append(k.full, []key.Binding{quitKey})
	return k
}
