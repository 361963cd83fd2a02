// Package midicoremidi implements an input-only midi engine on top of
// CoreMIDI sources via github.com/youpy/go-coremidi. Output, including
// virtual outputs, is not provided by this engine; on macOS use the
// portmidi or rtmidi engines for output streams.
package midicoremidi

// Name selects this engine in the factory's initializer map.
const Name = "coremidi"
