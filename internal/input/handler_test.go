package input

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vovakirdan/stretch/internal/core"
	"github.com/vovakirdan/stretch/internal/tag"
)

// mapDecoder is a fixed binding table.
type mapDecoder map[core.Binding]tag.Tag

func (m mapDecoder) Decode(b core.Binding) (tag.Tag, bool) {
	t, ok := m[b]
	return t, ok
}

func key(code string) core.Binding {
	return core.Binding{Code: code}
}

func testDecoder() mapDecoder {
	return mapDecoder{
		key("w"):     core.MoveUp,
		key("s"):     core.MoveDown,
		key("i"):     core.North,
		key("k"):     core.South,
		key("l"):     core.East,
		key("j"):     core.West,
		key("up"):    core.GrowUp,
		key("down"):  core.GrowDown,
		key("left"):  core.GrowLeft,
		key("right"): core.GrowRight,
		key("p"):     core.MetaPause,
		key("q"):     core.MetaQuit,
	}
}

// streamBuffer is an in-memory stream that records Close.
type streamBuffer struct {
	bytes.Buffer
	closed bool
	fail   bool
}

func (b *streamBuffer) Write(p []byte) (int, error) {
	if b.fail {
		return 0, errors.New("disk full")
	}
	return b.Buffer.Write(p)
}

func (b *streamBuffer) Close() error {
	b.closed = true
	return nil
}

func press(h *Handler, code string) {
	h.KeyPressed(core.KeyEvent{Binding: key(code), Pressed: true})
}

func release(h *Handler, code string) {
	h.KeyReleased(core.KeyEvent{Binding: key(code)})
}

func mustPoll(t *testing.T, h *Handler) core.Snapshot {
	t.Helper()
	s, err := h.Poll()
	if err != nil {
		t.Fatalf("Poll() failed: %v", err)
	}
	return s
}

func TestPollWithoutEventsIsZero(t *testing.T) {
	h := NewHandler(testDecoder(), Options{})

	for i := 0; i < 3; i++ {
		s := mustPoll(t, h)
		if !s.IsZero() {
			t.Errorf("poll %d: expected zero snapshot, got %+v", i, s)
		}
		for _, d := range core.Directions {
			if s.ResizeFor(d) != 0 {
				t.Errorf("poll %d: %s resize = %d", i, d, s.ResizeFor(d))
			}
		}
	}
}

func TestOneShotLatchesForOneFrame(t *testing.T) {
	h := NewHandler(testDecoder(), Options{})

	press(h, "p")
	if s := mustPoll(t, h); !s.Has(core.MetaPause) {
		t.Error("pause should be active on the first poll")
	}
	if s := mustPoll(t, h); s.Has(core.MetaPause) {
		t.Error("pause should not be active on the second poll")
	}
}

func TestOneShotIgnoresAutoRepeat(t *testing.T) {
	h := NewHandler(testDecoder(), Options{})

	press(h, "p")
	mustPoll(t, h)

	// Held key: the OS repeats the press without a release.
	press(h, "p")
	press(h, "p")
	if s := mustPoll(t, h); s.Has(core.MetaPause) {
		t.Error("auto-repeat should not fire a one-shot input")
	}

	release(h, "p")
	press(h, "p")
	if s := mustPoll(t, h); !s.Has(core.MetaPause) {
		t.Error("a new physical press should fire again")
	}
}

func TestContinuousHeldUntilRelease(t *testing.T) {
	h := NewHandler(testDecoder(), Options{})

	press(h, "w")
	for i := 0; i < 3; i++ {
		if s := mustPoll(t, h); !s.Has(core.MoveUp) {
			t.Errorf("poll %d: up should stay active while held", i)
		}
	}

	release(h, "w")
	if s := mustPoll(t, h); s.Has(core.MoveUp) {
		t.Error("up should clear after release")
	}
}

func TestContinuousTapIsSeenOnce(t *testing.T) {
	h := NewHandler(testDecoder(), Options{})

	press(h, "s")
	release(h, "s")

	if s := mustPoll(t, h); !s.Has(core.MoveDown) {
		t.Error("a press and release inside one frame should still be seen")
	}
	if s := mustPoll(t, h); s.Has(core.MoveDown) {
		t.Error("the tap should not persist")
	}
}

func TestUnboundKeysAreIgnored(t *testing.T) {
	h := NewHandler(testDecoder(), Options{})

	press(h, "z")
	release(h, "z")
	if s := mustPoll(t, h); !s.IsZero() {
		t.Errorf("unbound key produced %+v", s)
	}
}

func TestResizeCallsSum(t *testing.T) {
	h := NewHandler(testDecoder(), Options{})

	h.Resize(3, core.East)
	h.Resize(-1, core.East)
	h.Resize(2, core.North)
	h.Resize(-2, core.North)
	h.Resize(4, core.West)

	s := mustPoll(t, h)
	want := [4]int{core.North: 0, core.South: 0, core.East: 2, core.West: 4}
	if s.Resize != want {
		t.Errorf("Resize = %v, want %v", s.Resize, want)
	}

	if s := mustPoll(t, h); s.Resize != [4]int{} {
		t.Errorf("totals should reset after poll, got %v", s.Resize)
	}
}

func TestResizeRejectsUnknownDirection(t *testing.T) {
	h := NewHandler(testDecoder(), Options{})

	for _, d := range []core.Direction{-1, 4, 99} {
		if h.Resize(1, d) {
			t.Errorf("Resize(1, %d) accepted an unknown direction", int(d))
		}
	}
	h.Resize(2, core.South)

	s := mustPoll(t, h)
	if s.ResizeFor(core.South) != 2 {
		t.Errorf("south resize = %d, want 2", s.ResizeFor(core.South))
	}
}

func TestAxisGating(t *testing.T) {
	step := func() int { return 3 }

	tests := []struct {
		name    string
		keys    []string
		want    [4]int
		wantSel core.Direction
	}{
		{"north then horizontal is zero", []string{"i", "left"}, [4]int{}, core.North},
		{"north then right is zero", []string{"i", "right"}, [4]int{}, core.North},
		{"east then vertical is zero", []string{"l", "up"}, [4]int{}, core.East},
		{"north grows up", []string{"i", "up"}, [4]int{core.North: 3}, core.North},
		{"north shrinks down", []string{"i", "down"}, [4]int{core.North: -3}, core.North},
		{"south grows down", []string{"k", "down"}, [4]int{core.South: 3}, core.South},
		{"east grows right", []string{"l", "right"}, [4]int{core.East: 3}, core.East},
		{"west grows left", []string{"j", "left"}, [4]int{core.West: 3}, core.West},
		{"gestures cancel", []string{"j", "left", "right"}, [4]int{}, core.West},
		{"reselect mid-frame", []string{"i", "up", "l", "right"}, [4]int{core.North: 3, core.East: 3}, core.East},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(testDecoder(), Options{Step: step})
			for _, k := range tt.keys {
				press(h, k)
				release(h, k)
			}

			s := mustPoll(t, h)
			if s.Resize != tt.want {
				t.Errorf("Resize = %v, want %v", s.Resize, tt.want)
			}
			if sel, ok := h.Selected(); !ok || sel != tt.wantSel {
				t.Errorf("Selected() = %v, %v; want %v", sel, ok, tt.wantSel)
			}
		})
	}
}

func TestSelectionPersistsAcrossFrames(t *testing.T) {
	h := NewHandler(testDecoder(), Options{})

	press(h, "k")
	release(h, "k")
	first := mustPoll(t, h)
	if !first.Has(core.South) {
		t.Error("selection input should be active on its frame")
	}

	press(h, "down")
	release(h, "down")
	s := mustPoll(t, h)
	if s.Has(core.South) {
		t.Error("selection input should not repeat")
	}
	if s.ResizeFor(core.South) != 1 {
		t.Errorf("south resize = %d, want 1", s.ResizeFor(core.South))
	}
}

func TestGestureWithoutSelectionIsZero(t *testing.T) {
	h := NewHandler(testDecoder(), Options{})

	press(h, "up")
	s := mustPoll(t, h)
	if s.Resize != [4]int{} {
		t.Errorf("Resize = %v, want zero", s.Resize)
	}
	if !s.Has(core.GrowUp) {
		t.Error("the gesture itself should still be reported")
	}
}

// script drives one frame of input before each poll.
var script = []func(h *Handler){
	func(h *Handler) {},
	func(h *Handler) { press(h, "w") },
	func(h *Handler) { press(h, "i"); release(h, "i") },
	func(h *Handler) { press(h, "up"); release(h, "up"); h.Resize(2, core.West) },
	func(h *Handler) { release(h, "w") },
	func(h *Handler) { press(h, "left"); release(h, "left") },
	func(h *Handler) {},
	func(h *Handler) { press(h, "p"); press(h, "p"); press(h, "s") },
	func(h *Handler) { h.Resize(-1, core.South); h.Resize(1, core.South) },
	func(h *Handler) { release(h, "s"); release(h, "p"); press(h, "q") },
}

func TestRecordReplayEquivalence(t *testing.T) {
	sink := &streamBuffer{}
	rec := NewHandler(testDecoder(), Options{Step: func() int { return 2 }})

	if err := rec.BeginWriting(sink); err != nil {
		t.Fatalf("BeginWriting() failed: %v", err)
	}
	if rec.Mode() != ModeRecording {
		t.Fatalf("Mode() = %v, want recording", rec.Mode())
	}

	var recorded []core.Snapshot
	for _, frame := range script {
		frame(rec)
		recorded = append(recorded, mustPoll(t, rec))
	}
	if err := rec.EndWriting(); err != nil {
		t.Fatalf("EndWriting() failed: %v", err)
	}
	if !sink.closed {
		t.Error("EndWriting should close the sink")
	}

	// Sanity: the script produced both empty and busy frames.
	if !recorded[0].IsZero() || recorded[3].ResizeFor(core.North) != 2 || recorded[3].ResizeFor(core.West) != 2 {
		t.Fatalf("unexpected recording: %+v", recorded)
	}

	source := &streamBuffer{}
	source.Write(sink.Bytes())

	play := NewHandler(testDecoder(), Options{})
	if err := play.BeginReading(source); err != nil {
		t.Fatalf("BeginReading() failed: %v", err)
	}

	for i, want := range recorded {
		// Live input during replay must not leak into the frames.
		press(play, "q")
		play.Resize(5, core.East)

		got := mustPoll(t, play)
		if !got.Equal(want) {
			t.Errorf("frame %d: replayed %+v, recorded %+v", i, got, want)
		}
	}
	if play.Frame() != len(recorded) {
		t.Errorf("Frame() = %d, want %d", play.Frame(), len(recorded))
	}

	_, err := play.Poll()
	if !errors.Is(err, ErrReplayExhausted) {
		t.Fatalf("Poll() past the end = %v, want ErrReplayExhausted", err)
	}
	if !source.closed {
		t.Error("source should be closed once exhausted")
	}
	if _, again := play.Poll(); !errors.Is(again, ErrReplayExhausted) {
		t.Errorf("exhaustion should repeat until EndReading, got %v", again)
	}

	if err := play.EndReading(); err != nil {
		t.Fatalf("EndReading() failed: %v", err)
	}
	if play.Mode() != ModeLive {
		t.Errorf("Mode() = %v, want live", play.Mode())
	}
	if s := mustPoll(t, play); !s.IsZero() {
		t.Errorf("first live poll after replay = %+v, want zero", s)
	}
}

func TestInvalidTransitions(t *testing.T) {
	h := NewHandler(testDecoder(), Options{})

	if err := h.EndWriting(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("EndWriting() while live = %v", err)
	}
	if err := h.EndReading(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("EndReading() while live = %v", err)
	}

	if err := h.BeginWriting(&streamBuffer{}); err != nil {
		t.Fatalf("BeginWriting() failed: %v", err)
	}
	if err := h.BeginWriting(&streamBuffer{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("BeginWriting() while recording = %v", err)
	}
	if err := h.BeginReading(&streamBuffer{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("BeginReading() while recording = %v", err)
	}
	if err := h.EndReading(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("EndReading() while recording = %v", err)
	}
	if h.Mode() != ModeRecording {
		t.Errorf("failed transitions must not change mode, got %v", h.Mode())
	}
}

func TestBeginReadingRejectsBadHeader(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"wrong format", "format: something-else\nversion: 1\n"},
		{"future version", "format: stretch-replay\nversion: 99\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &streamBuffer{}
			src.WriteString(tt.data)

			h := NewHandler(testDecoder(), Options{})
			err := h.BeginReading(src)
			if !errors.Is(err, ErrReplayCorrupt) {
				t.Fatalf("BeginReading() = %v, want ErrReplayCorrupt", err)
			}
			if !src.closed {
				t.Error("rejected source should be closed")
			}
			if h.Mode() != ModeLive {
				t.Errorf("Mode() = %v, want live", h.Mode())
			}
		})
	}
}

// frameDoc is one complete frame document.
func frameDoc(n int, active string) string {
	return fmt.Sprintf("---\nframe: %d\nn: 0\ns: 0\ne: 0\nw: 0\nactive: [%s]\n", n, active)
}

func TestReplayCorruptFrames(t *testing.T) {
	header := "format: stretch-replay\nversion: 1\n"
	tests := []struct {
		name   string
		frames string
	}{
		{"frame gap", frameDoc(0, "") + frameDoc(2, "")},
		{"unknown input", frameDoc(0, "") + frameDoc(1, "teleport")},
		{"empty record", frameDoc(0, "") + "---\n{}\n"},
		{"missing frame index", frameDoc(0, "") + "---\nn: 0\ns: 0\ne: 0\nw: 0\nactive: []\n"},
		{"missing resize", frameDoc(0, "") + "---\nframe: 1\nn: 0\ns: 0\ne: 0\nactive: []\n"},
		{"missing active", frameDoc(0, "") + "---\nframe: 1\nn: 0\ns: 0\ne: 0\nw: 4\n"},
		{"unknown key", frameDoc(0, "") + "---\nframe: 1\nn: 0\ns: 0\ne: 0\nw: 0\nactive: []\nz: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &streamBuffer{}
			src.WriteString(header + tt.frames)

			h := NewHandler(testDecoder(), Options{})
			if err := h.BeginReading(src); err != nil {
				t.Fatalf("BeginReading() failed: %v", err)
			}
			mustPoll(t, h)

			_, err := h.Poll()
			if !errors.Is(err, ErrReplayCorrupt) {
				t.Fatalf("Poll() = %v, want ErrReplayCorrupt", err)
			}
			if _, again := h.Poll(); !errors.Is(again, ErrReplayCorrupt) {
				t.Errorf("corruption should halt the replay, got %v", again)
			}
			if err := h.Close(); err != nil {
				t.Errorf("Close() = %v", err)
			}
		})
	}
}

func TestReplayTruncatedRecording(t *testing.T) {
	sink := &streamBuffer{}
	rec := NewHandler(testDecoder(), Options{})
	if err := rec.BeginWriting(sink); err != nil {
		t.Fatalf("BeginWriting() failed: %v", err)
	}
	rec.Resize(3, core.West)
	first := mustPoll(t, rec)
	rec.Resize(4, core.West)
	mustPoll(t, rec)
	if err := rec.EndWriting(); err != nil {
		t.Fatalf("EndWriting() failed: %v", err)
	}

	lines := strings.SplitAfter(sink.String(), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for cut := 1; cut <= 2; cut++ {
		t.Run(fmt.Sprintf("last %d lines", cut), func(t *testing.T) {
			src := &streamBuffer{}
			src.WriteString(strings.Join(lines[:len(lines)-cut], ""))

			play := NewHandler(testDecoder(), Options{})
			if err := play.BeginReading(src); err != nil {
				t.Fatalf("BeginReading() failed: %v", err)
			}
			if got := mustPoll(t, play); !got.Equal(first) {
				t.Fatalf("frame 0 = %+v, want %+v", got, first)
			}
			if s, err := play.Poll(); !errors.Is(err, ErrReplayCorrupt) {
				t.Errorf("truncated frame: Poll() = %+v, %v, want ErrReplayCorrupt", s, err)
			}
		})
	}
}

func TestRecordingWriteFailureAborts(t *testing.T) {
	sink := &streamBuffer{}
	h := NewHandler(testDecoder(), Options{})

	if err := h.BeginWriting(sink); err != nil {
		t.Fatalf("BeginWriting() failed: %v", err)
	}
	mustPoll(t, h)

	sink.fail = true
	press(h, "p")
	s, err := h.Poll()
	if !errors.Is(err, ErrRecordingAborted) {
		t.Fatalf("Poll() = %v, want ErrRecordingAborted", err)
	}
	if !s.Has(core.MetaPause) {
		t.Error("the live snapshot should still be returned")
	}
	if h.Mode() != ModeLive || !sink.closed {
		t.Errorf("abort should close the sink and return to live (mode %v, closed %v)", h.Mode(), sink.closed)
	}
}

func TestCloseEndsSession(t *testing.T) {
	sink := &streamBuffer{}
	h := NewHandler(testDecoder(), Options{})

	if err := h.BeginWriting(sink); err != nil {
		t.Fatalf("BeginWriting() failed: %v", err)
	}
	mustPoll(t, h)

	if err := h.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if !sink.closed || h.Mode() != ModeLive {
		t.Error("Close should end the recording")
	}
	if !strings.HasPrefix(sink.String(), "format: stretch-replay") {
		t.Errorf("stream should start with the header, got %q", sink.String())
	}
	if err := h.Close(); err != nil {
		t.Errorf("Close() while live = %v, want nil", err)
	}
}

func TestQueueOverflowDropsEvents(t *testing.T) {
	h := NewHandler(testDecoder(), Options{QueueSize: 2})

	if !h.Resize(1, core.North) || !h.Resize(1, core.North) {
		t.Fatal("events within capacity should be accepted")
	}
	if h.Resize(1, core.North) {
		t.Error("event beyond capacity should be rejected")
	}

	if s := mustPoll(t, h); s.ResizeFor(core.North) != 2 {
		t.Errorf("north resize = %d, want 2", s.ResizeFor(core.North))
	}
	if !h.Resize(1, core.North) {
		t.Error("queue should accept events again after a poll")
	}
}
