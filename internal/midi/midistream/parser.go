// Package midistream converts between raw MIDI byte streams and the packed
// event words used at the engine boundary. It is shared by every engine
// implementation that talks to a byte-oriented transport (CoreMIDI packets,
// rtmidi callbacks, rawmidi device nodes, serial lines).
package midistream

import (
	"github.com/lhpt2/portmidi/sdk/contracts"
)

const (
	sysexStart byte = 0xF0
	sysexEnd   byte = 0xF7
)

// DataLength returns the number of data bytes that follow the given status
// byte in a short message, or -1 for sysex start and undefined statuses.
func DataLength(status byte) int {
	switch status & 0xF0 {
	case 0x80, 0x90, 0xA0, 0xB0, 0xE0:
		return 2
	case 0xC0, 0xD0:
		return 1
	}
	switch status {
	case 0xF1, 0xF3:
		return 1
	case 0xF2:
		return 2
	case 0xF6:
		return 0
	}
	if IsRealTime(status) {
		return 0
	}
	return -1
}

// IsRealTime reports whether the byte is a single-byte real-time status.
func IsRealTime(b byte) bool {
	return b >= 0xF8
}

// Parser incrementally assembles packed events from a raw MIDI byte
// stream. Short messages honor running status; a sysex message is split
// into events of four bytes each, with only the first carrying the status
// byte. A real-time byte arriving inside a sysex burst is emitted
// immediately as its own event, ahead of the surrounding sysex words but
// with the same timestamp, so timestamps stay non-decreasing.
//
// A Parser is not safe for concurrent use; engines feed it from a single
// reader goroutine or callback.
type Parser struct {
	running byte // running status, channel messages only, 0 when none
	status  byte // status of the message being assembled, 0 when idle

	short    [2]byte
	shortLen int
	needed   int

	inSysex  bool
	chunk    [4]byte
	chunkLen int
}

// NewParser returns an empty parser.
func NewParser() *Parser {
	return &Parser{}
}

// Reset discards all partial state, including a sysex message in flight.
// Engines call it after a buffer overflow so the discarded remainder of a
// partial sysex is not reassembled.
func (p *Parser) Reset() {
	*p = Parser{}
}

// Feed consumes a slice of raw bytes observed at the given timestamp and
// returns the events completed by them, in delivery order.
func (p *Parser) Feed(ts contracts.Timestamp, data []byte) []contracts.PackedEvent {
	var out []contracts.PackedEvent
	for _, b := range data {
		out = p.feedByte(out, ts, b)
	}
	return out
}

func (p *Parser) feedByte(out []contracts.PackedEvent, ts contracts.Timestamp, b byte) []contracts.PackedEvent {
	if IsRealTime(b) {
		// Delivered immediately, even mid-sysex.
		return append(out, contracts.PackedEvent{Word: uint32(b), Timestamp: ts})
	}

	if p.inSysex {
		switch {
		case b == sysexEnd:
			p.chunk[p.chunkLen] = b
			p.chunkLen++
			out = p.flushChunk(out, ts)
			p.inSysex = false
		case b >= 0x80:
			// A non-real-time status terminates a sysex without EOX: the
			// message was truncated, which is not an error. Flush what we
			// have and process the new status normally.
			out = p.flushChunk(out, ts)
			p.inSysex = false
			return p.feedByte(out, ts, b)
		default:
			p.chunk[p.chunkLen] = b
			p.chunkLen++
			if p.chunkLen == len(p.chunk) {
				out = p.flushChunk(out, ts)
			}
		}
		return out
	}

	if b >= 0x80 {
		if b == sysexStart {
			p.running = 0
			p.status = 0
			p.inSysex = true
			p.chunk[0] = b
			p.chunkLen = 1
			return out
		}
		n := DataLength(b)
		if n < 0 {
			// Undefined status, skip.
			return out
		}
		// Running status applies to channel messages only; a system common
		// status cancels it.
		if b < 0xF0 {
			p.running = b
		} else {
			p.running = 0
		}
		if n == 0 {
			p.status = 0
			return append(out, contracts.PackedEvent{Word: uint32(b), Timestamp: ts})
		}
		p.status = b
		p.needed = n
		p.shortLen = 0
		return out
	}

	// Data byte. Without a message in flight, the running status starts a
	// new one; otherwise there is nothing to attach it to.
	if p.status == 0 {
		if p.running == 0 {
			return out
		}
		p.status = p.running
		p.needed = DataLength(p.running)
		p.shortLen = 0
	}
	p.short[p.shortLen] = b
	p.shortLen++
	if p.shortLen < p.needed {
		return out
	}
	msg := contracts.Message{Status: p.status, Data1: p.short[0]}
	if p.needed == 2 {
		msg.Data2 = p.short[1]
	}
	p.status = 0
	p.shortLen = 0
	return append(out, contracts.PackedEvent{Word: msg.Pack(), Timestamp: ts})
}

// flushChunk emits the pending sysex chunk, padded with zeros.
func (p *Parser) flushChunk(out []contracts.PackedEvent, ts contracts.Timestamp) []contracts.PackedEvent {
	if p.chunkLen == 0 {
		return out
	}
	var word uint32
	for i := 0; i < p.chunkLen; i++ {
		word |= uint32(p.chunk[i]) << (8 * i)
	}
	p.chunkLen = 0
	return append(out, contracts.PackedEvent{Word: word, Timestamp: ts})
}
