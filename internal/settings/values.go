package settings

import (
	"sort"

	"github.com/vovakirdan/stretch/internal/tag"
)

// EnumValues maps tags to values of type T.
//
// On the wire it is a plain name -> value document: decoded entries are held
// by name until SetValues resolves them against a tag table. Tag identity never
// reaches the wire, so renaming a Go constant is safe while renaming its
// canonical string orphans old saves.
type EnumValues[T comparable] struct {
	raw    map[string]T
	values map[tag.Tag]T
}

// NewEnumValues creates an empty store.
func NewEnumValues[T comparable]() *EnumValues[T] {
	return &EnumValues[T]{
		raw:    make(map[string]T),
		values: make(map[tag.Tag]T),
	}
}

// FromNames creates a store holding unresolved name-keyed entries.
func FromNames[T comparable](entries map[string]T) *EnumValues[T] {
	v := NewEnumValues[T]()
	for name, val := range entries {
		v.raw[name] = val
	}
	return v
}

// SetValues resolves the name-keyed entries through table and replaces the
// store's contents with the tag-keyed result. Names the table does not know
// are dropped and returned in sorted order.
func (v *EnumValues[T]) SetValues(table *tag.Table) (dropped []string) {
	resolved := make(map[tag.Tag]T, len(v.raw))
	for name, val := range v.raw {
		t, ok := table.Lookup(name)
		if !ok {
			dropped = append(dropped, name)
			continue
		}
		resolved[t] = val
	}
	v.values = resolved
	v.raw = make(map[string]T)

	sort.Strings(dropped)
	return dropped
}

// Get returns the value stored for t.
func (v *EnumValues[T]) Get(t tag.Tag) (T, bool) {
	val, ok := v.values[t]
	return val, ok
}

// Lookup returns the value stored under a canonical name.
func (v *EnumValues[T]) Lookup(name string) (T, bool) {
	for t, val := range v.values {
		if t.String() == name {
			return val, true
		}
	}
	var zero T
	return zero, false
}

// Set stores val for t.
func (v *EnumValues[T]) Set(t tag.Tag, val T) {
	v.values[t] = val
}

// Remove deletes t and reports whether it was present.
func (v *EnumValues[T]) Remove(t tag.Tag) bool {
	if _, ok := v.values[t]; !ok {
		return false
	}
	delete(v.values, t)
	return true
}

// Len returns the number of resolved entries.
func (v *EnumValues[T]) Len() int {
	return len(v.values)
}

// Tags returns the resolved tags in no particular order.
func (v *EnumValues[T]) Tags() []tag.Tag {
	out := make([]tag.Tag, 0, len(v.values))
	for t := range v.values {
		out = append(out, t)
	}
	return out
}

// Union copies every entry of other into v, overwriting on conflict.
func (v *EnumValues[T]) Union(other *EnumValues[T]) {
	for t, val := range other.values {
		v.values[t] = val
	}
}

// Names returns the wire view of the store: canonical name -> value.
func (v *EnumValues[T]) Names() map[string]T {
	out := make(map[string]T, len(v.values))
	for t, val := range v.values {
		out[t.String()] = val
	}
	return out
}

// Equal reports whether both stores hold the same tag -> value mapping.
func (v *EnumValues[T]) Equal(other *EnumValues[T]) bool {
	if len(v.values) != len(other.values) {
		return false
	}
	for t, val := range v.values {
		if o, ok := other.values[t]; !ok || o != val {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the resolved entries.
func (v *EnumValues[T]) Clone() *EnumValues[T] {
	c := NewEnumValues[T]()
	c.Union(v)
	return c
}
