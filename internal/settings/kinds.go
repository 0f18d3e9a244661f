package settings

import (
	"embed"
	"io/fs"
	"math"
	"sync"
	"sync/atomic"

	"github.com/vovakirdan/stretch/internal/core"
	"github.com/vovakirdan/stretch/internal/tag"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// DefaultsFS returns the bundled default resources, one "<kind>.yaml" each.
func DefaultsFS() fs.FS {
	sub, err := fs.Sub(defaultsFS, "defaults")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}
	return sub
}

// Kind names, also the resource and save file base names.
const (
	KindColors = "colors"
	KindInputs = "inputs"
	KindParams = "params"
)

// ColorMapper resolves color slots. Colors always resolve (black at worst).
type ColorMapper = Mapper[core.RGB]

// ColorKind describes the color mapper.
func ColorKind() Kind[core.RGB] {
	return Kind[core.RGB]{
		Name:       KindColors,
		Families:   []tag.Family{core.ColorFamily},
		Default:    core.Black,
		AllowUnset: false,
		Codec: TextCodec[core.RGB]{
			Format: core.RGB.Hex,
			Parse:  core.ParseRGB,
		},
	}
}

// NewColorMapper creates the color mapper.
func NewColorMapper(opts Options) (*ColorMapper, error) {
	return New(ColorKind(), opts)
}

// InputKind describes the key binding mapper.
func InputKind() Kind[core.Binding] {
	return Kind[core.Binding]{
		Name:       KindInputs,
		Families:   core.InputFamilies(),
		Default:    core.Binding{},
		AllowUnset: true,
		Codec: TextCodec[core.Binding]{
			Format: core.Binding.String,
			Parse:  core.ParseBinding,
		},
	}
}

// InputMapper maps logical inputs to key bindings and back.
type InputMapper struct {
	*Mapper[core.Binding]

	stale  atomic.Bool
	mu     sync.Mutex
	index  map[core.Binding]tag.Tag
	cancel func()
}

// NewInputMapper creates the key binding mapper.
func NewInputMapper(opts Options) (*InputMapper, error) {
	m, err := New(InputKind(), opts)
	if err != nil {
		return nil, err
	}

	im := &InputMapper{Mapper: m}
	im.stale.Store(true)
	// Listeners run under the mapper lock, so only flag the index here and
	// rebuild on the next Decode.
	im.cancel = m.Subscribe(func(Event) {
		im.stale.Store(true)
	})
	return im, nil
}

// Decode returns the logical input bound to b. When several inputs share a
// binding, the one from the earliest family (then earliest tag) wins.
func (im *InputMapper) Decode(b core.Binding) (tag.Tag, bool) {
	if b.IsZero() {
		return nil, false
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	if im.stale.Swap(false) {
		im.rebuild()
	}
	t, ok := im.index[b]
	return t, ok
}

// rebuild recomputes the reverse index. Callers hold im.mu.
func (im *InputMapper) rebuild() {
	effective := im.Effective()
	index := make(map[core.Binding]tag.Tag, len(effective))
	for _, t := range im.Table().Tags() {
		b, ok := effective[t]
		if !ok || b.IsZero() {
			continue
		}
		if _, taken := index[b]; !taken {
			index[b] = t
		}
	}
	im.index = index
}

// Close detaches the reverse index from the mapper.
func (im *InputMapper) Close() {
	if im.cancel != nil {
		im.cancel()
		im.cancel = nil
	}
}

// ParamKind describes the tunable parameter mapper.
func ParamKind() Kind[float64] {
	return Kind[float64]{
		Name:       KindParams,
		Families:   []tag.Family{core.ParamFamily},
		Default:    0,
		AllowUnset: true,
		Codec:      YAMLCodec[float64]{},
	}
}

// ParameterMapper resolves tunable gameplay parameters.
type ParameterMapper struct {
	*Mapper[float64]
}

// NewParameterMapper creates the parameter mapper.
func NewParameterMapper(opts Options) (*ParameterMapper, error) {
	m, err := New(ParamKind(), opts)
	if err != nil {
		return nil, err
	}
	return &ParameterMapper{Mapper: m}, nil
}

// Int returns a parameter rounded to the nearest integer.
func (p *ParameterMapper) Int(param core.Param) int {
	return int(math.Round(p.Get(param)))
}

// ResizeStep returns the cells applied per resize gesture, at least 1.
func (p *ParameterMapper) ResizeStep() int {
	return max(p.Int(core.ParamResizeStep), 1)
}

// MinBoxSize returns the smallest box dimension, at least 1.
func (p *ParameterMapper) MinBoxSize() int {
	return max(p.Int(core.ParamMinBoxSize), 1)
}

// TickRate returns the simulation rate. A value the user set wins, then a
// positive fallback, then the bundled default, then 60. The result is clamped
// to [core.MinTickRate, core.MaxTickRate].
func (p *ParameterMapper) TickRate(fallback int) int {
	r := 60
	switch {
	case p.IsUserSet(core.ParamTickRate):
		r = p.Int(core.ParamTickRate)
	case fallback > 0:
		r = fallback
	default:
		if v := p.Int(core.ParamTickRate); v > 0 {
			r = v
		}
	}
	return core.Clamp(r, core.MinTickRate, core.MaxTickRate)
}
