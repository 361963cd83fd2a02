//go:build !linux

package midirawmidi

import (
	"github.com/lhpt2/portmidi/internal/midi/midistub"
	"github.com/lhpt2/portmidi/sdk/contracts"
)

// New returns a stub engine on non-Linux systems.
func New(opts *contracts.ClientOptions) contracts.Engine {
	return midistub.New(Name, "rawmidi device nodes are only available on Linux", opts.Logger)
}
