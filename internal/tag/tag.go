// Package tag provides stable identifiers for settable keys and the tables
// that resolve their canonical names.
//
// A Tag belongs to exactly one family (movement inputs, colors, parameters...).
// Families are declared statically by the packages that own the tags, and a
// Table is built once from an ordered list of families. Tags are compared by
// identity; only their canonical names ever reach a save file or a replay.
package tag

import "fmt"

// Tag is a logical key that can carry a value.
// Implementations are small comparable values (typically integer enums) so
// tags can be used directly as map keys.
type Tag interface {
	// Family returns the id of the family this tag belongs to.
	Family() string

	// String returns the canonical name used on the wire.
	String() string
}

// Family is a closed set of tags sharing one semantic domain.
type Family struct {
	ID   string
	Tags []Tag
}

// NewFamily declares a family from the given tags.
// Panics if a tag reports a different family id, since that is a declaration bug.
func NewFamily[T Tag](id string, tags ...T) Family {
	f := Family{ID: id, Tags: make([]Tag, 0, len(tags))}
	for _, t := range tags {
		if t.Family() != id {
			panic(fmt.Sprintf("tag: %q declared in family %q but reports %q", t.String(), id, t.Family()))
		}
		f.Tags = append(f.Tags, t)
	}
	return f
}

// Contains reports whether t is a member of the family.
func (f Family) Contains(t Tag) bool {
	for _, m := range f.Tags {
		if m == t {
			return true
		}
	}
	return false
}
