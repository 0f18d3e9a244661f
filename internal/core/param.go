package core

import "github.com/vovakirdan/stretch/internal/tag"

// FamilyParam is the family id of the tunable parameters.
const FamilyParam = "param"

// Bounds of the tick-rate parameter.
const (
	MinTickRate = 1
	MaxTickRate = 240
)

// Param names a tunable gameplay parameter.
type Param int

const (
	ParamTickRate   Param = iota // simulation ticks per second
	ParamResizeStep              // cells added per resize gesture
	ParamMinBoxSize              // smallest width/height a box can shrink to
	ParamMoveSpeed               // cells per tick while a movement key is held
	ParamGravity                 // rows per tick added to a jump's vertical speed
	ParamJumpImpulse             // initial vertical speed of a jump, negative is up
)

func (Param) Family() string { return FamilyParam }

// String returns the canonical name for the parameter.
func (p Param) String() string {
	switch p {
	case ParamTickRate:
		return "tick-rate"
	case ParamResizeStep:
		return "resize-step"
	case ParamMinBoxSize:
		return "min-box-size"
	case ParamMoveSpeed:
		return "move-speed"
	case ParamGravity:
		return "gravity"
	case ParamJumpImpulse:
		return "jump-impulse"
	default:
		return "unknown"
	}
}

// ParamFamily declares all parameters.
var ParamFamily = tag.NewFamily(FamilyParam,
	ParamTickRate, ParamResizeStep, ParamMinBoxSize,
	ParamMoveSpeed, ParamGravity, ParamJumpImpulse,
)
