//go:build !rtmidi_native

package midirtmidi

import (
	"github.com/lhpt2/portmidi/internal/midi/midistub"
	"github.com/lhpt2/portmidi/sdk/contracts"
)

// New returns a stub engine for builds without the rtmidi_native tag.
func New(opts *contracts.ClientOptions) contracts.Engine {
	return midistub.New(Name, "build with -tags rtmidi_native and the rtmidi library installed", opts.Logger)
}
