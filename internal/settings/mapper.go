// Package settings provides persistent, tag-keyed value stores layered over
// compiled-in defaults.
//
// A Mapper merges three layers: the user's save file, a bundled default
// resource, and a single hardcoded default value. Mutations go to the user
// layer and are written back immediately. Corrupt or missing files never stop
// the game; they are logged and treated as empty.
package settings

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/stretch/internal/tag"
)

// ErrInvalidKind is returned by New for an incomplete Kind.
var ErrInvalidKind = errors.New("settings: invalid mapper kind")

// Kind describes one specialization of Mapper.
type Kind[T comparable] struct {
	// Name selects both the default resource and the save document
	// ("<name>.yaml").
	Name string

	// Families lists the tag families in lookup order. Must be non-empty.
	Families []tag.Family

	// Default is returned when neither the user nor the resource has a value.
	Default T

	// AllowUnset permits removing user values. When false, Unset is a no-op
	// and every declared tag always resolves.
	AllowUnset bool

	Codec Codec[T]
}

// Options carries the collaborators of a Mapper.
type Options struct {
	// Defaults holds the bundled default resources. Nil means no resources.
	Defaults fs.FS

	// Store persists the user layer. Nil keeps everything in memory.
	Store Store

	// Logger receives recovered errors. Nil discards.
	Logger *log.Logger

	// Strict makes use of an undeclared tag panic instead of logging.
	Strict bool
}

// Event is delivered to listeners after a mutation.
// It is either a Changed[T] or a Removed.
type Event interface {
	settingsEvent()
}

// Changed is sent when Set stores a new user value.
type Changed[T any] struct {
	Tag   tag.Tag
	Value T
}

func (Changed[T]) settingsEvent() {}

// Removed is sent when a user value is cleared.
type Removed struct {
	Tag tag.Tag
}

func (Removed) settingsEvent() {}

// Listener receives mapper events. It runs synchronously while the mapper's
// lock is held, so it must not call back into the mapper.
type Listener func(Event)

// Mapper is a persistent tag -> T store with default fallback.
// It is safe for concurrent use.
type Mapper[T comparable] struct {
	kind   Kind[T]
	table  *tag.Table
	store  Store
	logger *log.Logger
	strict bool

	mu        sync.RWMutex
	defaults  *EnumValues[T]
	user      *EnumValues[T]
	listeners []*listenerEntry
}

type listenerEntry struct {
	fn Listener
}

// New creates a mapper and loads both layers.
func New[T comparable](kind Kind[T], opts Options) (*Mapper[T], error) {
	if kind.Name == "" || len(kind.Families) == 0 || kind.Codec == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind.Name)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := &Mapper[T]{
		kind:   kind,
		table:  tag.NewTable(kind.Families...),
		store:  opts.Store,
		logger: logger.With("mapper", kind.Name),
		strict: opts.Strict,
	}

	m.defaults = m.loadDefaults(opts.Defaults)
	m.user = m.loadUser()
	return m, nil
}

func (m *Mapper[T]) fileName() string {
	return m.kind.Name + ".yaml"
}

// loadDefaults reads the bundled resource. It is expected to exist, but a
// broken build should still start with the hardcoded default.
func (m *Mapper[T]) loadDefaults(fsys fs.FS) *EnumValues[T] {
	if fsys == nil {
		return NewEnumValues[T]()
	}
	data, err := fs.ReadFile(fsys, m.fileName())
	if err != nil {
		m.logger.Error("default resource unavailable", "error", err)
		return NewEnumValues[T]()
	}
	return m.decode(data, "default resource")
}

func (m *Mapper[T]) loadUser() *EnumValues[T] {
	if m.store == nil {
		return NewEnumValues[T]()
	}
	data, err := m.store.Load(m.kind.Name)
	if errors.Is(err, fs.ErrNotExist) {
		return NewEnumValues[T]()
	}
	if err != nil {
		m.logger.Warn("cannot read saved settings, using defaults", "error", err)
		return NewEnumValues[T]()
	}
	return m.decode(data, "saved settings")
}

func (m *Mapper[T]) decode(data []byte, what string) *EnumValues[T] {
	entries, err := m.kind.Codec.Unmarshal(data)
	if err != nil {
		m.logger.Warn("malformed "+what+", treating as empty", "error", err)
		return NewEnumValues[T]()
	}
	v := FromNames(entries)
	if dropped := v.SetValues(m.table); len(dropped) > 0 {
		m.logger.Debug("dropped unknown names from "+what, "names", dropped)
	}
	return v
}

// Name returns the kind name.
func (m *Mapper[T]) Name() string {
	return m.kind.Name
}

// Table returns the name table built from the kind's families.
func (m *Mapper[T]) Table() *tag.Table {
	return m.table
}

// AllowUnset reports the kind's unset policy.
func (m *Mapper[T]) AllowUnset() bool {
	return m.kind.AllowUnset
}

// Default returns the kind's hardcoded default value.
func (m *Mapper[T]) Default() T {
	return m.kind.Default
}

func (m *Mapper[T]) checkDeclared(t tag.Tag) bool {
	if m.table.Contains(t) {
		return true
	}
	if m.strict {
		panic(fmt.Sprintf("settings: %s mapper has no tag %v", m.kind.Name, t))
	}
	m.logger.Error("undeclared tag", "tag", t)
	return false
}

// resolve walks user -> resource. Callers hold mu.
func (m *Mapper[T]) resolve(t tag.Tag) (T, bool) {
	if v, ok := m.user.Get(t); ok {
		return v, true
	}
	return m.defaults.Get(t)
}

// Get returns the effective value of t: the user value, else the default
// resource value, else the kind's default. It never fails.
func (m *Mapper[T]) Get(t tag.Tag) T {
	if !m.checkDeclared(t) {
		return m.kind.Default
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if v, ok := m.resolve(t); ok {
		return v
	}
	return m.kind.Default
}

// Lookup is Get that can report absence. Only kinds that allow unset values
// report absence; the others always resolve to at least the default.
func (m *Mapper[T]) Lookup(t tag.Tag) (T, bool) {
	if !m.checkDeclared(t) {
		return m.kind.Default, !m.kind.AllowUnset
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if v, ok := m.resolve(t); ok {
		return v, true
	}
	return m.kind.Default, !m.kind.AllowUnset
}

// IsUserSet reports whether the user layer overrides t.
func (m *Mapper[T]) IsUserSet(t tag.Tag) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.user.Get(t)
	return ok
}

// Effective returns the effective value of every declared tag that
// resolves, keyed by tag.
func (m *Mapper[T]) Effective() map[tag.Tag]T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[tag.Tag]T)
	for _, t := range m.table.Tags() {
		if v, ok := m.resolve(t); ok {
			out[t] = v
		} else if !m.kind.AllowUnset {
			out[t] = m.kind.Default
		}
	}
	return out
}

// Set stores a user value, persists it and notifies listeners.
func (m *Mapper[T]) Set(t tag.Tag, v T) {
	if !m.checkDeclared(t) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.user.Set(t, v)
	m.persist()
	m.notify(Changed[T]{Tag: t, Value: v})
}

// Unset removes a user value so the tag falls back to its defaults.
// It is a no-op for kinds that do not allow unset values.
func (m *Mapper[T]) Unset(t tag.Tag) {
	if !m.checkDeclared(t) {
		return
	}
	if !m.kind.AllowUnset {
		m.logger.Debug("unset ignored by policy", "tag", t)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.user.Remove(t) {
		return
	}
	m.persist()
	m.notify(Removed{Tag: t})
}

// Reset clears every user value, subject to the same policy as Unset.
func (m *Mapper[T]) Reset() {
	if !m.kind.AllowUnset {
		m.logger.Debug("reset ignored by policy")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user.Len() == 0 {
		return
	}

	cleared := m.user.Tags()
	m.user = NewEnumValues[T]()
	m.persist()

	// Notify in declaration order so listeners see a stable sequence.
	ordered := make([]tag.Tag, 0, len(cleared))
	for _, t := range m.table.Tags() {
		for _, c := range cleared {
			if c == t {
				ordered = append(ordered, t)
				break
			}
		}
	}
	for _, t := range ordered {
		m.notify(Removed{Tag: t})
	}
}

// Subscribe registers a listener. The returned function removes it.
func (m *Mapper[T]) Subscribe(fn Listener) (cancel func()) {
	entry := &listenerEntry{fn: fn}

	m.mu.Lock()
	m.listeners = append(m.listeners, entry)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, e := range m.listeners {
			if e == entry {
				m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// notify runs listeners in registration order. Callers hold mu.
func (m *Mapper[T]) notify(ev Event) {
	for _, e := range m.listeners {
		e.fn(ev)
	}
}

// persist writes the user layer. Callers hold mu.
// Failures are logged; memory stays authoritative until the next write.
func (m *Mapper[T]) persist() {
	if m.store == nil {
		return
	}
	data, err := m.kind.Codec.Marshal(m.user.Names())
	if err != nil {
		m.logger.Error("cannot encode settings", "error", err)
		return
	}
	if err := m.store.Save(m.kind.Name, data); err != nil {
		m.logger.Error("cannot save settings", "error", err)
	}
}
