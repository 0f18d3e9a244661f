// Package tui provides the Bubble Tea integration for stretch.
// It runs the box sandbox, the replay browser and the SSH server.
package tui

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/stretch/internal/core"
	"github.com/vovakirdan/stretch/internal/input"
	"github.com/vovakirdan/stretch/internal/settings"
)

const (
	maxHistory = 64
	minScreenW = 16
	minScreenH = 8

	defaultScreenW = 80
	defaultScreenH = 24
)

// SandboxOptions configures a sandbox session.
type SandboxOptions struct {
	Settings *settings.Bundle
	Handler  *input.Handler
	Logger   *log.Logger

	// Title is shown on the top wall, e.g. "live" or "replay warmup".
	Title string

	// Initial terminal size. Updated by WindowSizeMsg.
	Width, Height int

	// TickRate is used unless the user set the tick-rate parameter.
	TickRate int
}

// SandboxModel lets the player move and stretch a box inside a walled
// playfield. Every change to the box comes from one handler snapshot per tick,
// so a recorded session replays identically.
type SandboxModel struct {
	settings *settings.Bundle
	handler  *input.Handler
	logger   *log.Logger
	title    string
	tickRate int

	screen  *core.Screen
	help    help.Model
	box     core.Rect
	history []core.Rect
	paused  bool

	// Jump arc: vertical speed and offset from the takeoff row.
	jumping bool
	jumpV   float64
	jumpY   float64

	status   string
	lastErr  error
	quitting bool
}

// NewSandboxModel creates a sandbox sized to the terminal.
func NewSandboxModel(opts SandboxOptions) SandboxModel {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = defaultScreenW, defaultScreenH
	}

	m := SandboxModel{
		settings: opts.Settings,
		handler:  opts.Handler,
		logger:   logger,
		title:    opts.Title,
		tickRate: opts.TickRate,
		screen:   core.NewScreen(max(width, minScreenW), max(height, minScreenH)-1),
		help:     help.New(),
	}
	m.help.Width = width
	m.box = m.initialBox()
	return m
}

// playfield is the area inside the walls. The last screen row is the HUD.
func (m SandboxModel) playfield() core.Rect {
	return core.NewRect(1, 1, m.screen.Width()-2, m.screen.Height()-3)
}

func (m SandboxModel) initialBox() core.Rect {
	field := m.playfield()
	size := m.settings.Params.MinBoxSize()
	w := max(size*2, field.W/4)
	h := max(size*2, field.H/4)
	box := core.NewRect(field.X+(field.W-w)/2, field.Y+(field.H-h)/2, w, h)
	return box.ClampInto(field)
}

// Box returns the current box.
func (m SandboxModel) Box() core.Rect {
	return m.box
}

// Err returns the last input error, if any.
func (m SandboxModel) Err() error {
	return m.lastErr
}

// rate is the current simulation rate in ticks per second.
func (m SandboxModel) rate() int {
	return m.settings.Params.TickRate(m.tickRate)
}

// Init starts the tick loop.
func (m SandboxModel) Init() tea.Cmd {
	return tickCmd(m.rate())
}

// Update handles messages and updates the model state.
func (m SandboxModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		SendKey(m.handler, msg)
		return m, nil

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

func (m SandboxModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.screen.Resize(max(msg.Width, minScreenW), max(msg.Height, minScreenH)-1)
	m.help.Width = msg.Width
	m.box = m.box.ClampInto(m.playfield())
	return m, nil
}

func (m SandboxModel) handleTick() (tea.Model, tea.Cmd) {
	s, err := m.handler.Poll()
	switch {
	case err == nil:
		m.step(s)
	case errors.Is(err, input.ErrRecordingAborted):
		m.lastErr = err
		m.status = "recording aborted"
		m.step(s)
	case errors.Is(err, input.ErrReplayExhausted):
		m.status = "replay finished, input is live"
		m.endReplay()
	case errors.Is(err, input.ErrReplayCorrupt):
		m.lastErr = err
		m.status = "replay corrupt, input is live"
		m.logger.Error("replay halted", "frame", m.handler.Frame(), "error", err)
		m.endReplay()
	default:
		m.lastErr = err
		m.logger.Error("poll failed", "error", err)
	}

	if m.quitting {
		return m, tea.Quit
	}
	return m, tickCmd(m.rate())
}

func (m *SandboxModel) endReplay() {
	if err := m.handler.EndReading(); err != nil {
		m.logger.Warn("cannot close replay", "error", err)
	}
}

// step applies one frame of input to the box.
func (m *SandboxModel) step(s core.Snapshot) {
	if s.Has(core.MetaQuit) {
		m.quitting = true
		return
	}
	if s.Has(core.MetaMenu) {
		m.help.ShowAll = !m.help.ShowAll
	}
	if s.Has(core.MetaPause) {
		m.paused = !m.paused
	}
	if s.Has(core.MetaUndo) {
		if n := len(m.history); n > 0 {
			m.box = m.history[n-1]
			m.history = m.history[:n-1]
		}
		m.jumping = false
		return
	}
	if s.Has(core.MetaRestart) {
		m.remember()
		m.box = m.initialBox()
		m.paused = false
		m.jumping = false
		return
	}
	if m.paused {
		return
	}

	before := m.box
	field := m.playfield()
	params := m.settings.Params
	minSize := params.MinBoxSize()

	speed := max(params.Int(core.ParamMoveSpeed), 1)
	var dx, dy int
	if s.Has(core.MoveUp) {
		dy -= speed
	}
	if s.Has(core.MoveDown) {
		dy += speed
	}
	if s.Has(core.MoveLeft) {
		dx -= speed
	}
	if s.Has(core.MoveRight) {
		dx += speed
	}
	dy += m.jump(s.Has(core.MoveJump))
	m.box = m.box.Translate(dx, dy).ClampInto(field)

	for _, d := range core.Directions {
		if amount := s.ResizeFor(d); amount != 0 {
			m.box = m.box.Grow(d, clipGrowth(m.box, d, amount, field), minSize)
		}
	}
	m.box = m.box.ClampInto(field)

	if m.box != before {
		m.history = append(m.history, before)
		if len(m.history) > maxHistory {
			m.history = m.history[1:]
		}
	}
}

// jump advances the jump arc by one frame and returns the rows to move.
// Without gravity a jump is an instant hop of jump-impulse rows.
func (m *SandboxModel) jump(pressed bool) int {
	params := m.settings.Params
	gravity := params.Get(core.ParamGravity)
	if pressed && !m.jumping {
		if gravity <= 0 {
			return params.Int(core.ParamJumpImpulse)
		}
		m.jumping = true
		m.jumpV = params.Get(core.ParamJumpImpulse)
		m.jumpY = 0
	}
	if !m.jumping {
		return 0
	}

	m.jumpV += gravity
	y := m.jumpY + m.jumpV
	if y >= 0 {
		y = 0
		m.jumping = false
	}
	dy := int(math.Round(y)) - int(math.Round(m.jumpY))
	m.jumpY = y
	return dy
}

func (m *SandboxModel) remember() {
	m.history = append(m.history, m.box)
	if len(m.history) > maxHistory {
		m.history = m.history[1:]
	}
}

// clipGrowth limits outward growth of one side to the playfield edge.
func clipGrowth(box core.Rect, d core.Direction, amount int, field core.Rect) int {
	if amount <= 0 {
		return amount
	}
	switch d {
	case core.North:
		return min(amount, box.Y-field.Y)
	case core.South:
		return min(amount, field.Bottom()-box.Bottom())
	case core.East:
		return min(amount, field.Right()-box.Right())
	case core.West:
		return min(amount, box.X-field.X)
	}
	return 0
}

// draw renders the playfield into the screen buffer.
func (m SandboxModel) draw() {
	s := m.screen
	s.Clear()

	walls := core.NewRect(0, 0, s.Width(), s.Height()-1)
	s.DrawBox(walls, core.ColorWall)
	if m.title != "" {
		s.DrawText(2, 0, " "+m.title+" ", core.ColorHUD)
	}

	s.DrawRect(m.box, '░', core.ColorPlayer)
	s.DrawBox(m.box, core.ColorBox)
	if side, ok := m.handler.Selected(); ok {
		drawSide(s, m.box, side, core.ColorBoxSelected)
	}

	hud := fmt.Sprintf(" %s  frame %d  box %dx%d at %d,%d",
		m.handler.Mode(), m.handler.Frame(), m.box.W, m.box.H, m.box.X, m.box.Y)
	if side, ok := m.handler.Selected(); ok {
		hud += "  side " + side.String()
	}
	if m.paused {
		hud += "  PAUSED"
	}
	s.DrawText(0, s.Height()-1, hud, core.ColorHUD)
	if m.status != "" {
		s.DrawText(2, walls.Bottom()-1, " "+m.status+" ", core.ColorGoal)
	}
}

// drawSide highlights one edge of r.
func drawSide(s *core.Screen, r core.Rect, d core.Direction, c core.ColorSlot) {
	switch d {
	case core.North, core.South:
		y := r.Y
		if d == core.South {
			y = r.Bottom() - 1
		}
		for x := r.X; x < r.Right(); x++ {
			s.Set(x, y, s.GetCell(x, y).Rune, c)
		}
	case core.East, core.West:
		x := r.X
		if d == core.East {
			x = r.Right() - 1
		}
		for y := r.Y; y < r.Bottom(); y++ {
			s.Set(x, y, s.GetCell(x, y).Rune, c)
		}
	}
}

// View renders the current state to a string for display.
func (m SandboxModel) View() string {
	if m.quitting {
		return ""
	}
	m.draw()
	keys := NewHelpKeyMap(m.settings.Inputs)
	return RenderScreen(m.screen, m.settings.Colors) + "\n" + m.help.View(keys)
}

// RunSandbox runs a sandbox session on the local terminal and returns the
// final model.
func RunSandbox(opts SandboxOptions) (SandboxModel, error) {
	model := NewSandboxModel(opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	final, err := p.Run()
	if err != nil {
		return model, err
	}
	if m, ok := final.(SandboxModel); ok {
		return m, nil
	}
	return model, nil
}
