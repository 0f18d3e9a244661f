package core

import (
	"fmt"
	"strings"
)

// Modifier is a bitmask of held modifier keys.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModCtrl  Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModShift Modifier = 1 << 2
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "ctrl"},
	{ModAlt, "alt"},
	{ModShift, "shift"},
}

// Binding is a physical key combination: a primary key code plus modifiers.
// Codes are lowercase key names ("w", "up", "space", "f1").
// The zero Binding means "unbound".
type Binding struct {
	Code string
	Mod  Modifier
}

// IsZero reports whether the binding is unbound.
func (b Binding) IsZero() bool {
	return b.Code == ""
}

// String formats the binding as "ctrl+alt+shift+code".
func (b Binding) String() string {
	if b.IsZero() {
		return ""
	}
	var sb strings.Builder
	for _, m := range modifierNames {
		if b.Mod&m.mod != 0 {
			sb.WriteString(m.name)
			sb.WriteByte('+')
		}
	}
	sb.WriteString(b.Code)
	return sb.String()
}

// ParseBinding parses the format produced by Binding.String.
// A lone uppercase letter is read as shift plus the lowercase letter, and a
// literal space as "space", matching what terminals report.
func ParseBinding(s string) (Binding, error) {
	if s == "" {
		return Binding{}, nil
	}
	switch s {
	case " ":
		return Binding{Code: "space"}, nil
	case "+":
		return Binding{Code: "+"}, nil
	}

	parts := strings.Split(s, "+")
	code := parts[len(parts)-1]
	// "ctrl++" style: the code itself is a plus sign
	if code == "" && len(parts) > 1 && strings.HasSuffix(s, "++") {
		code = "+"
		parts = parts[:len(parts)-1]
	}
	if code == "" {
		return Binding{}, fmt.Errorf("core: binding %q has no key", s)
	}

	var b Binding
	for _, p := range parts[:len(parts)-1] {
		found := false
		for _, m := range modifierNames {
			if p == m.name {
				b.Mod |= m.mod
				found = true
				break
			}
		}
		if !found {
			return Binding{}, fmt.Errorf("core: unknown modifier %q in binding %q", p, s)
		}
	}

	if len(code) == 1 && code[0] >= 'A' && code[0] <= 'Z' {
		b.Mod |= ModShift
		code = strings.ToLower(code)
	}
	b.Code = code
	return b, nil
}

// KeyEvent is one entry of the raw key feed.
type KeyEvent struct {
	Binding Binding
	Pressed bool // false for release
}
