package midistream

import (
	"bytes"
	"testing"

	"github.com/lhpt2/portmidi/sdk/contracts"
)

func TestShortBytes(t *testing.T) {
	tests := []struct {
		word uint32
		want []byte
	}{
		{0x00643C90, []byte{0x90, 60, 100}},
		{0x000005C0, []byte{0xC0, 5}},
		{0x000000F8, []byte{0xF8}},
		{0x000000F6, []byte{0xF6}},
	}
	for _, tt := range tests {
		if got := ShortBytes(tt.word); !bytes.Equal(got, tt.want) {
			t.Fatalf("ShortBytes(%#08x) = %#v, want %#v", tt.word, got, tt.want)
		}
	}
}

func TestWireBytesSysex(t *testing.T) {
	events := []contracts.PackedEvent{
		{Word: 0x424110F0},
		{Word: 0x00F74012},
	}
	want := []byte{0xF0, 0x41, 0x10, 0x42, 0x12, 0x40, 0xF7}
	if got := WireBytes(events); !bytes.Equal(got, want) {
		t.Fatalf("WireBytes = %#v, want %#v", got, want)
	}
}

func TestWireBytesSysexZeroPayload(t *testing.T) {
	// Zero bytes inside a sysex are payload, not padding; only bytes past
	// EOX are dropped.
	events := []contracts.PackedEvent{
		{Word: 0x010000F0},
		{Word: 0x0000F700},
	}
	want := []byte{0xF0, 0x00, 0x00, 0x01, 0x00, 0xF7}
	if got := WireBytes(events); !bytes.Equal(got, want) {
		t.Fatalf("WireBytes = %#v, want %#v", got, want)
	}
}

func TestWireBytesMixedBatch(t *testing.T) {
	events := []contracts.PackedEvent{
		{Word: 0x00643C90},
		{Word: 0x00F701F0},
		{Word: 0x00003C80},
	}
	want := []byte{0x90, 60, 100, 0xF0, 0x01, 0xF7, 0x80, 60, 0}
	if got := WireBytes(events); !bytes.Equal(got, want) {
		t.Fatalf("WireBytes = %#v, want %#v", got, want)
	}
}

func TestWireBytesRealTimeInsideSysex(t *testing.T) {
	// A clock word between two sysex words is a standalone byte, not
	// payload; it must not drag its zero padding into the sysex body.
	events := []contracts.PackedEvent{
		{Word: 0x424110F0},
		{Word: 0x000000F8},
		{Word: 0x00F74012},
	}
	want := []byte{0xF0, 0x41, 0x10, 0x42, 0xF8, 0x12, 0x40, 0xF7}
	if got := WireBytes(events); !bytes.Equal(got, want) {
		t.Fatalf("WireBytes = %#v, want %#v", got, want)
	}
}

func TestWireBytesRealTimeInsideSysexRoundTrip(t *testing.T) {
	raw := []byte{0xF0, 0x41, 0x10, 0x42, 0xF8, 0x12, 0x40, 0xF7}
	events := NewParser().Feed(0, raw)
	if got := WireBytes(events); !bytes.Equal(got, raw) {
		t.Fatalf("round trip = %#v, want %#v", got, raw)
	}
}

func TestAppendWireCarriesSysexStateAcrossCalls(t *testing.T) {
	var out []byte
	inSysex := false
	for _, word := range []uint32{0x424110F0, 0x000000F8, 0x00F74012} {
		out, inSysex = AppendWire(out, inSysex, word)
	}
	if inSysex {
		t.Fatal("sysex state not cleared by EOX")
	}
	want := []byte{0xF0, 0x41, 0x10, 0x42, 0xF8, 0x12, 0x40, 0xF7}
	if !bytes.Equal(out, want) {
		t.Fatalf("out = %#v, want %#v", out, want)
	}
}

func TestWireBytesRoundTripThroughParser(t *testing.T) {
	raw := []byte{0x90, 60, 100, 0xF0, 0x41, 0x10, 0x42, 0x12, 0x40, 0xF7, 0xC0, 5}
	events := NewParser().Feed(0, raw)
	if got := WireBytes(events); !bytes.Equal(got, raw) {
		t.Fatalf("round trip = %#v, want %#v", got, raw)
	}
}
