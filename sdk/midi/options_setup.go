package midi

import (
	"github.com/lhpt2/portmidi/internal/logger"
	"github.com/lhpt2/portmidi/internal/midi/midiportmidi"
	"github.com/lhpt2/portmidi/sdk/contracts"
)

// DefaultClientName is the name engines register with the platform when
// the caller does not supply one.
const DefaultClientName = "portmidi-go"

// applyDefaultOptions fills in defaults for options the caller did not
// provide.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.ClientName == "" {
		options.ClientName = DefaultClientName
	}
	if options.Engine == nil && options.EngineName == "" {
		options.EngineName = midiportmidi.Name
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options, nil
}
