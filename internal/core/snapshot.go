package core

import (
	"sort"

	"github.com/vovakirdan/stretch/internal/tag"
)

// Snapshot is the input state for one simulation frame.
// It is the only thing the simulation sees of the keyboard, which is what
// makes recorded input replay deterministically.
type Snapshot struct {
	// Resize holds the accumulated resize per side, indexed by Direction.
	// Positive grows the side outward.
	Resize [4]int

	// Active holds the inputs active this frame: held continuous inputs
	// plus one-shot inputs latched since the previous frame.
	Active map[tag.Tag]bool
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot() Snapshot {
	return Snapshot{Active: make(map[tag.Tag]bool)}
}

// Set marks an input as active.
func (s *Snapshot) Set(t tag.Tag) {
	if s.Active == nil {
		s.Active = make(map[tag.Tag]bool)
	}
	s.Active[t] = true
}

// Has returns true if the input is active this frame.
func (s Snapshot) Has(t tag.Tag) bool {
	return s.Active[t]
}

// ResizeFor returns the resize total for one side.
func (s Snapshot) ResizeFor(d Direction) int {
	return s.Resize[d]
}

// IsZero reports whether nothing happened this frame.
func (s Snapshot) IsZero() bool {
	return s.Resize == [4]int{} && len(s.Active) == 0
}

// Names returns the canonical names of the active inputs ordered by their
// position in table, so the same set always serializes the same way.
func (s Snapshot) Names(table *tag.Table) []string {
	tags := make([]tag.Tag, 0, len(s.Active))
	for t, on := range s.Active {
		if on {
			tags = append(tags, t)
		}
	}
	sort.Slice(tags, func(i, j int) bool {
		return table.Index(tags[i]) < table.Index(tags[j])
	})

	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.String()
	}
	return names
}

// Equal reports whether two snapshots carry the same resize totals and the
// same active set.
func (s Snapshot) Equal(other Snapshot) bool {
	if s.Resize != other.Resize {
		return false
	}
	count := 0
	for t, on := range s.Active {
		if !on {
			continue
		}
		if !other.Active[t] {
			return false
		}
		count++
	}
	for _, on := range other.Active {
		if on {
			count--
		}
	}
	return count == 0
}

// Clone creates a copy of this snapshot.
func (s Snapshot) Clone() Snapshot {
	clone := NewSnapshot()
	clone.Resize = s.Resize
	for k, v := range s.Active {
		clone.Active[k] = v
	}
	return clone
}
