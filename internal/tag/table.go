package tag

import "fmt"

// Table resolves canonical names to tags across an ordered list of families.
// It is immutable after construction and safe for concurrent use.
type Table struct {
	families []Family
	byName   map[string]Tag
	members  map[Tag]int // tag -> declaration index
	ordered  []Tag
}

// NewTable builds the name table for the given families.
//
// Families are consulted in declaration order: when two families declare the
// same canonical name, the earlier family wins. A name declared twice inside a
// single family, or an empty family list, panics.
func NewTable(families ...Family) *Table {
	if len(families) == 0 {
		panic("tag: table requires at least one family")
	}

	t := &Table{
		families: families,
		byName:   make(map[string]Tag),
		members:  make(map[Tag]int),
	}

	for _, f := range families {
		seen := make(map[string]bool, len(f.Tags))
		for _, tg := range f.Tags {
			name := tg.String()
			if seen[name] {
				panic(fmt.Sprintf("tag: name %q declared twice in family %q", name, f.ID))
			}
			seen[name] = true

			if _, taken := t.byName[name]; !taken {
				t.byName[name] = tg
			}
			if _, dup := t.members[tg]; !dup {
				t.members[tg] = len(t.ordered)
				t.ordered = append(t.ordered, tg)
			}
		}
	}

	return t
}

// Lookup returns the tag registered under name.
func (t *Table) Lookup(name string) (Tag, bool) {
	tg, ok := t.byName[name]
	return tg, ok
}

// Contains reports whether tg belongs to one of the table's families.
func (t *Table) Contains(tg Tag) bool {
	_, ok := t.members[tg]
	return ok
}

// Index returns the declaration position of tg, or -1 when unknown.
// Used to order tags deterministically.
func (t *Table) Index(tg Tag) int {
	if i, ok := t.members[tg]; ok {
		return i
	}
	return -1
}

// Tags returns every tag in declaration order.
func (t *Table) Tags() []Tag {
	out := make([]Tag, len(t.ordered))
	copy(out, t.ordered)
	return out
}

// Families returns the families the table was built from.
func (t *Table) Families() []Family {
	out := make([]Family, len(t.families))
	copy(out, t.families)
	return out
}
