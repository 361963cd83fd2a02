// Package midirtmidi implements a midi engine on top of the rtmidi
// library through gitlab.com/gomidi/midi/v2. The real implementation
// requires cgo and the rtmidi_native build tag; without the tag a stub is
// used.
package midirtmidi

// Name selects this engine in the factory's initializer map.
const Name = "rtmidi"
