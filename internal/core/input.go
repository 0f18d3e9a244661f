package core

import "github.com/vovakirdan/stretch/internal/tag"

// Family ids for the logical inputs. They never change once released,
// although only tag names are persisted.
const (
	FamilyMovement = "movement"
	FamilySelect   = "select"
	FamilyResize   = "resize"
	FamilyMeta     = "meta"
)

// Movement is a continuous input: active from key press until key release.
type Movement int

const (
	MoveUp Movement = iota
	MoveDown
	MoveLeft
	MoveRight
	MoveJump
)

func (Movement) Family() string { return FamilyMovement }

// String returns the canonical name for the movement input.
func (m Movement) String() string {
	switch m {
	case MoveUp:
		return "up"
	case MoveDown:
		return "down"
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	case MoveJump:
		return "jump"
	default:
		return "unknown"
	}
}

// Direction names one side of the selected box. It doubles as the one-shot
// "select side" input and as the index of per-direction resize totals.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

// Directions lists the four sides in index order.
var Directions = [4]Direction{North, South, East, West}

func (Direction) Family() string { return FamilySelect }

// String returns the canonical name for the direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Vertical reports whether the side lies on the vertical axis.
func (d Direction) Vertical() bool {
	return d == North || d == South
}

// ResizeGesture is a one-shot resize step applied to the selected side.
type ResizeGesture int

const (
	GrowUp ResizeGesture = iota
	GrowDown
	GrowLeft
	GrowRight
)

func (ResizeGesture) Family() string { return FamilyResize }

// String returns the canonical name for the gesture.
func (g ResizeGesture) String() string {
	switch g {
	case GrowUp:
		return "grow-up"
	case GrowDown:
		return "grow-down"
	case GrowLeft:
		return "grow-left"
	case GrowRight:
		return "grow-right"
	default:
		return "unknown"
	}
}

// Vertical reports whether the gesture moves along the vertical axis.
func (g ResizeGesture) Vertical() bool {
	return g == GrowUp || g == GrowDown
}

// Amount returns the signed resize the gesture produces for the selected side.
// Moving toward the side grows it outward; moving away shrinks it. A gesture on
// the other axis yields zero.
func (g ResizeGesture) Amount(selected Direction, step int) int {
	if g.Vertical() != selected.Vertical() {
		return 0
	}
	switch {
	case g == GrowUp && selected == North,
		g == GrowDown && selected == South,
		g == GrowRight && selected == East,
		g == GrowLeft && selected == West:
		return step
	default:
		return -step
	}
}

// Meta is a one-shot menu/meta command.
type Meta int

const (
	MetaPause Meta = iota
	MetaRestart
	MetaUndo
	MetaMenu
	MetaQuit
)

func (Meta) Family() string { return FamilyMeta }

// String returns the canonical name for the command.
func (m Meta) String() string {
	switch m {
	case MetaPause:
		return "pause"
	case MetaRestart:
		return "restart"
	case MetaUndo:
		return "undo"
	case MetaMenu:
		return "menu"
	case MetaQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Input families in lookup order. Earlier families win name collisions and
// binding collisions.
var (
	MovementFamily = tag.NewFamily(FamilyMovement, MoveUp, MoveDown, MoveLeft, MoveRight, MoveJump)
	SelectFamily   = tag.NewFamily(FamilySelect, North, South, East, West)
	ResizeFamily   = tag.NewFamily(FamilyResize, GrowUp, GrowDown, GrowLeft, GrowRight)
	MetaFamily     = tag.NewFamily(FamilyMeta, MetaPause, MetaRestart, MetaUndo, MetaMenu, MetaQuit)
)

// InputFamilies returns the input families in lookup order.
func InputFamilies() []tag.Family {
	return []tag.Family{MovementFamily, SelectFamily, ResizeFamily, MetaFamily}
}

// IsContinuous reports whether an input stays active until released.
func IsContinuous(t tag.Tag) bool {
	return t.Family() == FamilyMovement
}
