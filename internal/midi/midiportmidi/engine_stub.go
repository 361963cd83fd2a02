//go:build !portmidi_native

package midiportmidi

import (
	"github.com/lhpt2/portmidi/internal/midi/midistub"
	"github.com/lhpt2/portmidi/sdk/contracts"
)

// New returns a stub engine for builds without the portmidi_native tag.
func New(opts *contracts.ClientOptions) contracts.Engine {
	return midistub.New(Name, "build with -tags portmidi_native and the portmidi library installed", opts.Logger)
}
