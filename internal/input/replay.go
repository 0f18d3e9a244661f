package input

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/stretch/internal/core"
	"github.com/vovakirdan/stretch/internal/tag"
)

// Replay stream identification, written as the first document.
const (
	ReplayFormat  = "stretch-replay"
	ReplayVersion = 1
)

type replayHeader struct {
	Format  string `yaml:"format"`
	Version int    `yaml:"version"`
}

// frameRecord is one poll() result on the wire. Every key is always written,
// so a record cut short by a partial write is detectable on read.
type frameRecord struct {
	Frame  int      `yaml:"frame"`
	North  int      `yaml:"n"`
	South  int      `yaml:"s"`
	East   int      `yaml:"e"`
	West   int      `yaml:"w"`
	Active []string `yaml:"active,flow"`
}

// frameInput is frameRecord as read back. Nil fields were missing.
type frameInput struct {
	Frame  *int      `yaml:"frame"`
	North  *int      `yaml:"n"`
	South  *int      `yaml:"s"`
	East   *int      `yaml:"e"`
	West   *int      `yaml:"w"`
	Active *[]string `yaml:"active,flow"`
}

// missing returns the first absent key, or "".
func (f frameInput) missing() string {
	switch {
	case f.Frame == nil:
		return "frame"
	case f.North == nil:
		return "n"
	case f.South == nil:
		return "s"
	case f.East == nil:
		return "e"
	case f.West == nil:
		return "w"
	case f.Active == nil:
		return "active"
	}
	return ""
}

// Recorder appends snapshots to a YAML multi-document stream.
type Recorder struct {
	w     io.WriteCloser
	enc   *yaml.Encoder
	table *tag.Table
	next  int
}

// NewRecorder writes the stream header and returns a recorder.
func NewRecorder(w io.WriteCloser, table *tag.Table) (*Recorder, error) {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(replayHeader{Format: ReplayFormat, Version: ReplayVersion}); err != nil {
		return nil, fmt.Errorf("input: cannot write replay header: %w", err)
	}
	return &Recorder{w: w, enc: enc, table: table}, nil
}

// Write appends one frame.
func (r *Recorder) Write(s core.Snapshot) error {
	rec := frameRecord{
		Frame:  r.next,
		North:  s.Resize[core.North],
		South:  s.Resize[core.South],
		East:   s.Resize[core.East],
		West:   s.Resize[core.West],
		Active: s.Names(r.table),
	}

	if err := r.enc.Encode(rec); err != nil {
		return fmt.Errorf("input: cannot write frame %d: %w", r.next, err)
	}
	r.next++
	return nil
}

// Frames returns the number of frames written.
func (r *Recorder) Frames() int {
	return r.next
}

// Close flushes the encoder and closes the sink.
func (r *Recorder) Close() error {
	encErr := r.enc.Close()
	closeErr := r.w.Close()
	if encErr != nil {
		return fmt.Errorf("input: cannot flush replay: %w", encErr)
	}
	return closeErr
}

// Player reads snapshots back from a stream written by Recorder.
type Player struct {
	r     io.ReadCloser
	dec   *yaml.Decoder
	table *tag.Table
	next  int
}

// NewPlayer validates the stream header and returns a player.
func NewPlayer(r io.ReadCloser, table *tag.Table) (*Player, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var h replayHeader
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("%w: cannot read header: %v", ErrReplayCorrupt, err)
	}
	if h.Format != ReplayFormat || h.Version != ReplayVersion {
		return nil, fmt.Errorf("%w: unsupported stream %q v%d", ErrReplayCorrupt, h.Format, h.Version)
	}
	return &Player{r: r, dec: dec, table: table}, nil
}

// Next decodes the next frame. It returns ErrReplayExhausted at the end of
// the stream and ErrReplayCorrupt when a frame is missing or unreadable.
func (p *Player) Next() (core.Snapshot, error) {
	var rec frameInput
	if err := p.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return core.Snapshot{}, fmt.Errorf("%w after %d frames", ErrReplayExhausted, p.next)
		}
		return core.Snapshot{}, fmt.Errorf("%w: frame %d: %v", ErrReplayCorrupt, p.next, err)
	}
	if key := rec.missing(); key != "" {
		return core.Snapshot{}, fmt.Errorf("%w: frame %d: missing %q", ErrReplayCorrupt, p.next, key)
	}
	if *rec.Frame != p.next {
		return core.Snapshot{}, fmt.Errorf("%w: expected frame %d, found %d", ErrReplayCorrupt, p.next, *rec.Frame)
	}

	s := core.NewSnapshot()
	s.Resize[core.North] = *rec.North
	s.Resize[core.South] = *rec.South
	s.Resize[core.East] = *rec.East
	s.Resize[core.West] = *rec.West
	for _, name := range *rec.Active {
		t, ok := p.table.Lookup(name)
		if !ok {
			return core.Snapshot{}, fmt.Errorf("%w: frame %d: unknown input %q", ErrReplayCorrupt, p.next, name)
		}
		s.Set(t)
	}

	p.next++
	return s, nil
}

// Frames returns the number of frames read.
func (p *Player) Frames() int {
	return p.next
}

// Close closes the source.
func (p *Player) Close() error {
	return p.r.Close()
}
