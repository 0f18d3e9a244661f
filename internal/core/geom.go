// Package core provides the fundamental types shared by the input, settings
// and platform layers: logical input tags, key bindings, colors, parameters,
// per-frame snapshots and the screen buffer.
// It has no dependencies outside the module.
package core

// Rect represents an axis-aligned box on the playfield.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Grow moves one side outward by amount (inward when negative), keeping the
// opposite side fixed. The affected dimension never drops below minSize.
func (r Rect) Grow(d Direction, amount, minSize int) Rect {
	switch d {
	case North:
		amount = max(amount, minSize-r.H)
		r.Y -= amount
		r.H += amount
	case South:
		r.H = max(r.H+amount, minSize)
	case East:
		r.W = max(r.W+amount, minSize)
	case West:
		amount = max(amount, minSize-r.W)
		r.X -= amount
		r.W += amount
	}
	return r
}

// Translate returns the rectangle shifted by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// ClampInto shifts and shrinks r so it lies inside bounds.
func (r Rect) ClampInto(bounds Rect) Rect {
	r.W = min(r.W, bounds.W)
	r.H = min(r.H, bounds.H)
	r.X = Clamp(r.X, bounds.X, bounds.Right()-r.W)
	r.Y = Clamp(r.Y, bounds.Y, bounds.Bottom()-r.H)
	return r
}

// Clamp restricts val to [lo, hi].
func Clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
