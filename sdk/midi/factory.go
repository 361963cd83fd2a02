package midi

import (
	"errors"
	"fmt"

	"github.com/lhpt2/portmidi/internal/midi/midicoremidi"
	"github.com/lhpt2/portmidi/internal/midi/midiportmidi"
	"github.com/lhpt2/portmidi/internal/midi/midirawmidi"
	"github.com/lhpt2/portmidi/internal/midi/midirtmidi"
	"github.com/lhpt2/portmidi/internal/midi/midiserial"
	"github.com/lhpt2/portmidi/sdk/contracts"
)

// ErrUnknownEngine is returned when the requested engine name is not in
// the initializer map.
var ErrUnknownEngine = errors.New("unknown midi engine")

// engineInitializers maps engine names to their constructors. Engines that
// need a build tag or a particular platform still appear here; their
// packages fall back to a stub that initializes cleanly and reports zero
// devices.
var engineInitializers = map[string]func(*contracts.ClientOptions) contracts.Engine{
	midiportmidi.Name: midiportmidi.New, // PortMidi C library (tag portmidi_native)
	midicoremidi.Name: midicoremidi.New, // CoreMIDI sources (darwin)
	midirtmidi.Name:   midirtmidi.New,   // rtmidi via gomidi v2 (tag rtmidi_native)
	midirawmidi.Name:  midirawmidi.New,  // /dev/snd rawmidi nodes (linux)
	midiserial.Name:   midiserial.New,   // serial-line MIDI
}

// newEngine resolves the engine for the given options: an explicit
// instance wins, otherwise the named initializer is used.
func newEngine(opts *contracts.ClientOptions) (contracts.Engine, error) {
	if opts.Engine != nil {
		return opts.Engine, nil
	}
	if initializer, exists := engineInitializers[opts.EngineName]; exists {
		return initializer(opts), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, opts.EngineName)
}

// EngineNames returns the names accepted by WithEngineName.
func EngineNames() []string {
	names := make([]string, 0, len(engineInitializers))
	for name := range engineInitializers {
		names = append(names, name)
	}
	return names
}
