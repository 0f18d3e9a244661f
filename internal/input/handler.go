// Package input reduces raw key events to one deterministic snapshot per frame
// and records or replays those snapshots.
//
// Key events may arrive from any goroutine; they are queued and only applied
// inside Poll, which the simulation calls once per frame. Everything the
// simulation learns about the keyboard comes from Poll, so a recorded stream
// of snapshots replays the session exactly.
package input

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/stretch/internal/core"
	"github.com/vovakirdan/stretch/internal/tag"
)

var (
	// ErrInvalidTransition is returned when a session starts or ends from
	// the wrong mode.
	ErrInvalidTransition = errors.New("input: invalid mode transition")

	// ErrReplayExhausted is returned by Poll once the replay has no frames left.
	ErrReplayExhausted = errors.New("input: replay exhausted")

	// ErrReplayCorrupt is returned when a replay stream cannot be trusted.
	ErrReplayCorrupt = errors.New("input: replay corrupt")

	// ErrRecordingAborted is returned by Poll when a frame could not be
	// written. The handler is back in live mode.
	ErrRecordingAborted = errors.New("input: recording aborted")
)

// Mode is the handler's session state.
type Mode int

const (
	ModeLive Mode = iota
	ModeRecording
	ModeReplaying
)

func (m Mode) String() string {
	switch m {
	case ModeLive:
		return "live"
	case ModeRecording:
		return "recording"
	case ModeReplaying:
		return "replaying"
	default:
		return "unknown"
	}
}

// Decoder maps a physical binding to a logical input.
// settings.InputMapper implements it.
type Decoder interface {
	Decode(b core.Binding) (tag.Tag, bool)
}

// DefaultQueueSize bounds the pending event queue.
const DefaultQueueSize = 256

// Options configures a Handler.
type Options struct {
	// QueueSize bounds the events buffered between polls.
	QueueSize int

	// Step returns the resize applied per gesture. It is read on the
	// simulation goroutine. Nil means 1.
	Step func() int

	Logger *log.Logger
}

type eventKind int

const (
	evPress eventKind = iota
	evRelease
	evResize
)

type event struct {
	kind    eventKind
	binding core.Binding
	dir     core.Direction
	amount  int
}

// Handler is the per-frame input reducer.
//
// KeyPressed, KeyReleased and Resize are safe to call from any goroutine.
// Poll and the session methods belong to the simulation goroutine.
type Handler struct {
	decoder Decoder
	table   *tag.Table
	step    func() int
	logger  *log.Logger
	events  chan event

	pending  [4]int
	latched  map[tag.Tag]bool
	held     map[tag.Tag]bool
	down     map[core.Binding]bool
	selected core.Direction
	hasSel   bool

	mode     Mode
	frame    int
	recorder *Recorder
	player   *Player
	halted   error
}

// NewHandler creates a live handler decoding keys through dec.
func NewHandler(dec Decoder, opts Options) *Handler {
	size := opts.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	step := opts.Step
	if step == nil {
		step = func() int { return 1 }
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Handler{
		decoder: dec,
		table:   tag.NewTable(core.InputFamilies()...),
		step:    step,
		logger:  logger,
		events:  make(chan event, size),
		latched: make(map[tag.Tag]bool),
		held:    make(map[tag.Tag]bool),
		down:    make(map[core.Binding]bool),
	}
}

// Table returns the table used to name inputs in replay streams.
func (h *Handler) Table() *tag.Table {
	return h.table
}

// Mode returns the current session mode.
func (h *Handler) Mode() Mode {
	return h.mode
}

// Frame returns the number of polls since the current session began.
func (h *Handler) Frame() int {
	return h.frame
}

// Selected returns the side currently selected for resizing.
func (h *Handler) Selected() (core.Direction, bool) {
	return h.selected, h.hasSel
}

func (h *Handler) enqueue(ev event) bool {
	select {
	case h.events <- ev:
		return true
	default:
		h.logger.Warn("input queue full, dropping event", "binding", ev.binding.String())
		return false
	}
}

// KeyPressed queues a key press. It returns false if the queue is full.
func (h *Handler) KeyPressed(ev core.KeyEvent) bool {
	return h.enqueue(event{kind: evPress, binding: ev.Binding})
}

// KeyReleased queues a key release. It returns false if the queue is full.
func (h *Handler) KeyReleased(ev core.KeyEvent) bool {
	return h.enqueue(event{kind: evRelease, binding: ev.Binding})
}

// Key queues a press or release according to ev.Pressed.
func (h *Handler) Key(ev core.KeyEvent) bool {
	if ev.Pressed {
		return h.KeyPressed(ev)
	}
	return h.KeyReleased(ev)
}

// Resize queues a resize of one side. Calls before the next Poll sum up.
// Positive grows the side outward. An unknown direction is rejected.
func (h *Handler) Resize(amount int, d core.Direction) bool {
	if d < core.North || d > core.West {
		h.logger.Warn("resize with unknown direction, dropping event", "direction", int(d))
		return false
	}
	return h.enqueue(event{kind: evResize, dir: d, amount: amount})
}

// drain applies every queued event. In replay mode live input is discarded.
func (h *Handler) drain() {
	for {
		select {
		case ev := <-h.events:
			if h.mode != ModeReplaying {
				h.apply(ev)
			}
		default:
			return
		}
	}
}

func (h *Handler) apply(ev event) {
	switch ev.kind {
	case evResize:
		h.pending[ev.dir] += ev.amount

	case evPress:
		repeat := h.down[ev.binding]
		h.down[ev.binding] = true

		t, ok := h.decoder.Decode(ev.binding)
		if !ok {
			return
		}
		if core.IsContinuous(t) {
			h.held[t] = true
			h.latched[t] = true
			return
		}
		if repeat {
			// Auto-repeat: one-shot inputs fire once per physical press.
			return
		}
		h.latched[t] = true
		h.applyOneShot(t)

	case evRelease:
		delete(h.down, ev.binding)
		if t, ok := h.decoder.Decode(ev.binding); ok && core.IsContinuous(t) {
			delete(h.held, t)
		}
	}
}

func (h *Handler) applyOneShot(t tag.Tag) {
	switch v := t.(type) {
	case core.Direction:
		h.selected = v
		h.hasSel = true
	case core.ResizeGesture:
		if !h.hasSel {
			return
		}
		h.pending[h.selected] += v.Amount(h.selected, h.step())
	}
}

// Poll returns the snapshot for the next frame.
//
// In live and recording mode it reduces the queued events and resets the
// per-frame state; held movement inputs carry over. In recording mode the
// snapshot is also appended to the sink. In replay mode the next recorded
// snapshot is returned and live input is ignored; once the replay ends or
// proves corrupt, every Poll returns the same error until EndReading.
func (h *Handler) Poll() (core.Snapshot, error) {
	h.drain()

	if h.mode == ModeReplaying {
		return h.pollReplay()
	}

	s := core.NewSnapshot()
	s.Resize = h.pending
	for t := range h.held {
		s.Set(t)
	}
	for t := range h.latched {
		s.Set(t)
	}

	h.pending = [4]int{}
	clear(h.latched)
	h.frame++

	if h.mode == ModeRecording {
		if err := h.recorder.Write(s); err != nil {
			h.logger.Error("recording aborted", "frame", h.frame-1, "error", err)
			h.closeRecorder()
			return s, fmt.Errorf("%w: %v", ErrRecordingAborted, err)
		}
	}
	return s, nil
}

func (h *Handler) pollReplay() (core.Snapshot, error) {
	if h.halted != nil {
		return core.Snapshot{}, h.halted
	}

	s, err := h.player.Next()
	if err != nil {
		h.halted = err
		if closeErr := h.player.Close(); closeErr != nil {
			h.logger.Warn("cannot close replay source", "error", closeErr)
		}
		h.player = nil
		return core.Snapshot{}, err
	}
	h.frame++
	return s, nil
}

// resetLive clears all accumulated input so a session starts clean.
func (h *Handler) resetLive() {
	h.pending = [4]int{}
	clear(h.latched)
	clear(h.held)
	clear(h.down)
	h.hasSel = false
	h.frame = 0
}

// BeginWriting starts recording every snapshot to w.
// The handler takes ownership of w and closes it when recording ends.
func (h *Handler) BeginWriting(w io.WriteCloser) error {
	if h.mode != ModeLive {
		return fmt.Errorf("%w: begin writing while %s", ErrInvalidTransition, h.mode)
	}

	rec, err := NewRecorder(w, h.table)
	if err != nil {
		w.Close()
		return err
	}

	h.drain()
	h.resetLive()
	h.recorder = rec
	h.mode = ModeRecording
	h.logger.Info("recording started")
	return nil
}

// EndWriting stops recording and closes the sink.
func (h *Handler) EndWriting() error {
	if h.mode != ModeRecording {
		return fmt.Errorf("%w: end writing while %s", ErrInvalidTransition, h.mode)
	}
	frames := h.recorder.Frames()
	err := h.closeRecorder()
	h.logger.Info("recording finished", "frames", frames)
	return err
}

func (h *Handler) closeRecorder() error {
	err := h.recorder.Close()
	h.recorder = nil
	h.mode = ModeLive
	return err
}

// BeginReading starts replaying snapshots from r. The handler takes
// ownership of r and closes it, including when the header is rejected.
func (h *Handler) BeginReading(r io.ReadCloser) error {
	if h.mode != ModeLive {
		return fmt.Errorf("%w: begin reading while %s", ErrInvalidTransition, h.mode)
	}

	p, err := NewPlayer(r, h.table)
	if err != nil {
		r.Close()
		return err
	}

	h.drain()
	h.resetLive()
	h.player = p
	h.halted = nil
	h.mode = ModeReplaying
	h.logger.Info("replay started")
	return nil
}

// EndReading stops replaying and returns to live input.
func (h *Handler) EndReading() error {
	if h.mode != ModeReplaying {
		return fmt.Errorf("%w: end reading while %s", ErrInvalidTransition, h.mode)
	}

	var err error
	if h.player != nil {
		err = h.player.Close()
		h.player = nil
	}
	h.halted = nil
	h.mode = ModeLive
	h.resetLive()
	h.logger.Info("replay finished")
	return err
}

// Close ends any active session, releasing its stream.
func (h *Handler) Close() error {
	switch h.mode {
	case ModeRecording:
		return h.EndWriting()
	case ModeReplaying:
		return h.EndReading()
	}
	return nil
}
