//go:build !darwin

package midicoremidi

import (
	"github.com/lhpt2/portmidi/internal/midi/midistub"
	"github.com/lhpt2/portmidi/sdk/contracts"
)

// New returns a stub engine on non-darwin systems.
func New(opts *contracts.ClientOptions) contracts.Engine {
	return midistub.New(Name, "CoreMIDI is only available on macOS", opts.Logger)
}
