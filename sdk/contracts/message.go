package contracts

// Timestamp is a tick count in the engine's time base. On output ports
// opened with a non-zero latency the engine schedules delivery against it;
// a timestamp of zero means "use the current time". Timestamps supplied on
// successive writes to one port must be non-decreasing.
type Timestamp uint32

// Message is a short MIDI message: a status byte and up to two data bytes.
// Bytes not present in the message are zero. No validation of MIDI
// semantics is performed here; illegal data is the engine's concern.
type Message struct {
	Status byte // Status byte, e.g. 0x90 for Note On channel 1.
	Data1  byte // First data byte (note number, controller number, ...).
	Data2  byte // Second data byte (velocity, controller value, ...).
}

// Common status bytes, kept for convenience in callers and examples.
const (
	NoteOff byte = 0x80
	NoteOn  byte = 0x90
)

// Pack encodes the message into the engine's 32-bit wire word: status in
// the low byte, data1 in the next, data2 above that, high byte zero.
func (m Message) Pack() uint32 {
	return uint32(m.Status) | uint32(m.Data1)<<8 | uint32(m.Data2)<<16
}

// UnpackMessage is the inverse of Pack. The high byte of word is ignored.
func UnpackMessage(word uint32) Message {
	return Message{
		Status: byte(word),
		Data1:  byte(word >> 8),
		Data2:  byte(word >> 16),
	}
}

// Event is a short MIDI message together with its timestamp. A sysex
// message arrives as a sequence of events, each carrying four bytes of the
// message in the packed word; only the first carries the status byte.
// A real-time message embedded in a sysex stream is delivered as its own
// event, possibly ahead of surrounding sysex bytes, but never with an
// earlier timestamp.
type Event struct {
	Message   Message
	Timestamp Timestamp
}

// PackedEvent is the wire form of an Event as it crosses the engine
// boundary: the packed 32-bit word plus the timestamp.
type PackedEvent struct {
	Word      uint32
	Timestamp Timestamp
}

// Packed returns the wire form of the event.
func (e Event) Packed() PackedEvent {
	return PackedEvent{Word: e.Message.Pack(), Timestamp: e.Timestamp}
}

// Event unpacks the wire form.
func (p PackedEvent) Event() Event {
	return Event{Message: UnpackMessage(p.Word), Timestamp: p.Timestamp}
}
