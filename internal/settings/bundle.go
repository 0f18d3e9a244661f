package settings

import (
	"github.com/charmbracelet/log"
)

// Bundle holds one mapper of each kind, sharing a save directory.
type Bundle struct {
	Colors *ColorMapper
	Inputs *InputMapper
	Params *ParameterMapper
}

// Open creates all mappers over the bundled defaults and saveDir.
func Open(saveDir string, logger *log.Logger) (*Bundle, error) {
	opts := Options{
		Defaults: DefaultsFS(),
		Store:    NewDirStore(saveDir),
		Logger:   logger,
	}

	colors, err := NewColorMapper(opts)
	if err != nil {
		return nil, err
	}
	inputs, err := NewInputMapper(opts)
	if err != nil {
		return nil, err
	}
	params, err := NewParameterMapper(opts)
	if err != nil {
		inputs.Close()
		return nil, err
	}

	return &Bundle{Colors: colors, Inputs: inputs, Params: params}, nil
}

// Close releases listeners. Writes are synchronous, so nothing is pending.
func (b *Bundle) Close() {
	b.Inputs.Close()
}
