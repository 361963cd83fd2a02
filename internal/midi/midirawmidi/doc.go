// Package midirawmidi implements a midi engine over the kernel rawmidi
// device nodes under /dev/snd. It needs no MIDI userspace library, only
// golang.org/x/sys/unix, and is therefore the natural engine on bare
// Linux systems. Virtual devices are not supported.
package midirawmidi

// Name selects this engine in the factory's initializer map.
const Name = "rawmidi"
