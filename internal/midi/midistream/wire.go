package midistream

import (
	"github.com/lhpt2/portmidi/sdk/contracts"
)

// WireBytes flattens a batch of packed events back into the raw bytes a
// byte-oriented transport expects. Short messages contribute their status
// plus data bytes; sysex words contribute all significant bytes up to and
// including the EOX terminator. A sysex message must be contained in a
// single batch, which is how ports submit them.
func WireBytes(events []contracts.PackedEvent) []byte {
	out := make([]byte, 0, len(events)*4)
	inSysex := false
	for _, ev := range events {
		out, inSysex = AppendWire(out, inSysex, ev.Word)
	}
	return out
}

// ShortBytes extracts the significant bytes of one short message word.
func ShortBytes(word uint32) []byte {
	out, _ := AppendWire(nil, false, word)
	return out
}

// AppendWire flattens one packed word onto out and returns the updated
// sysex state. Engines whose writes can span several batches keep the
// state on their stream and thread it through every call.
func AppendWire(out []byte, inSysex bool, word uint32) ([]byte, bool) {
	b := [4]byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}

	// A real-time message interleaved between sysex words is a standalone
	// single-byte word, never sysex payload.
	if inSysex && IsRealTime(b[0]) {
		return append(out, b[0]), true
	}

	if !inSysex {
		status := b[0]
		if status == sysexStart {
			inSysex = true
		} else {
			n := DataLength(status)
			if n < 0 {
				n = 2
			}
			return append(out, b[:1+n]...), false
		}
	}

	// Sysex word: copy bytes up to and including EOX. A zero data byte is
	// legal sysex payload, so padding is only skipped after the terminator.
	for _, c := range b {
		if !inSysex {
			break
		}
		out = append(out, c)
		if c == sysexEnd {
			inSysex = false
		}
	}
	return out, inSysex
}
