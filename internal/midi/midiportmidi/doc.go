// Package midiportmidi binds the PortMidi C library as a midi engine.
// The real implementation requires cgo, the portmidi shared library and
// the portmidi_native build tag; without the tag a stub is used.
package midiportmidi

// Name selects this engine in the factory's initializer map. It is the
// default engine.
const Name = "portmidi"
