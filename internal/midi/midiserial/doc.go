// Package midiserial implements an engine for MIDI over serial lines
// using go.bug.st/serial. DIN MIDI on a UART is a plain byte stream at
// 31250 baud; every enumerated serial port is exposed as one
// bidirectional device. Virtual devices are not supported.
package midiserial

// Name selects this engine in the factory's initializer map.
const Name = "serial"
