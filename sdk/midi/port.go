package midi

import (
	"github.com/lhpt2/portmidi/sdk/contracts"
)

// DefaultBufferSize is a reasonable event buffer size for ports whose
// callers have no specific sizing needs.
const DefaultBufferSize = 256

type portState int

const (
	stateOpen portState = iota
	stateClosed
)

// port is the state shared by input and output ports: an exclusively owned
// native stream handle and the open/closed state machine. Ports are not
// internally synchronized; a single port must not be used from two
// goroutines without external serialization.
type port struct {
	engine     contracts.Engine
	logger     contracts.Logger
	stream     contracts.StreamHandle
	device     contracts.DeviceInfo
	bufferSize int
	state      portState
}

// Device returns the descriptor the port was opened against.
func (p *port) Device() contracts.DeviceInfo {
	return p.device
}

// guard rejects operations on a closed port before any engine call.
func (p *port) guard() error {
	if p.state != stateOpen {
		return contracts.ErrBadPointer
	}
	return nil
}

// Close releases the native stream, flushing pending buffers. After Close
// every other operation on the port fails with contracts.ErrBadPointer.
func (p *port) Close() error {
	if err := p.guard(); err != nil {
		return err
	}
	st := p.engine.Close(p.stream)
	p.state = stateClosed
	p.stream = nil
	if err := st.Err(); err != nil {
		return err
	}
	p.logger.Debug("stream closed",
		p.logger.Field().Int("device", int(p.device.ID)))
	return nil
}

// HasHostError reports whether the stream has a pending host error. If
// true, the next explicit operation on the stream surfaces the stored
// error before doing anything else, clearing it.
func (p *port) HasHostError() bool {
	if p.state != stateOpen {
		return false
	}
	return p.engine.HasHostError(p.stream)
}

// HostErrorText retrieves and clears the pending host error message.
func (p *port) HostErrorText() string {
	return p.engine.HostErrorText()
}

// InputPort is a bound, stateful input stream on one device.
type InputPort struct {
	port
}

func newInputPort(r *Registry, device contracts.DeviceInfo, bufferSize int) (*InputPort, error) {
	stream, st := r.engine.OpenInput(device.ID, bufferSize)
	if err := st.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("input stream opened",
		r.logger.Field().Int("device", int(device.ID)),
		r.logger.Field().Int("buffer", bufferSize))
	return &InputPort{port{
		engine:     r.engine,
		logger:     r.logger,
		stream:     stream,
		device:     device,
		bufferSize: bufferSize,
	}}, nil
}

// Poll tests whether input is pending without consuming it.
func (p *InputPort) Poll() (bool, error) {
	if err := p.guard(); err != nil {
		return false, err
	}
	st := p.engine.Poll(p.stream)
	if err := st.Err(); err != nil {
		return false, err
	}
	return st == contracts.StatusGotData, nil
}

// Read pulls at most one event from the stream. It returns (nil, nil)
// when no event is available; that is an empty result, not a failure.
//
// On buffer overflow the engine has flushed its buffer, including any
// partial sysex message in flight, and Read surfaces
// contracts.ErrBufferOverflow exactly once; reading resumes with the next
// arriving message.
func (p *InputPort) Read() (*contracts.Event, error) {
	events, err := p.ReadN(1)
	if err != nil || len(events) == 0 {
		return nil, err
	}
	return &events[0], nil
}

// ReadN pulls up to max pending events in arrival order. A real-time
// message that arrived inside a sysex burst appears out of byte order but
// with a timestamp no earlier than the surrounding sysex words.
func (p *InputPort) ReadN(max int) ([]contracts.Event, error) {
	if err := p.guard(); err != nil {
		return nil, err
	}
	if max <= 0 {
		return nil, nil
	}
	buf := make([]contracts.PackedEvent, max)
	n := p.engine.Read(p.stream, buf)
	if n < 0 {
		return nil, contracts.Status(n).Err()
	}
	if n == 0 {
		return nil, nil
	}
	events := make([]contracts.Event, n)
	for i, pe := range buf[:n] {
		events[i] = pe.Event()
	}
	return events, nil
}

// OutputPort is a bound, stateful output stream on one device.
type OutputPort struct {
	port
	latency int
}

func newOutputPort(r *Registry, device contracts.DeviceInfo, bufferSize, latency int) (*OutputPort, error) {
	stream, st := r.engine.OpenOutput(device.ID, bufferSize, latency)
	if err := st.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("output stream opened",
		r.logger.Field().Int("device", int(device.ID)),
		r.logger.Field().Int("buffer", bufferSize),
		r.logger.Field().Int("latency", latency))
	return &OutputPort{
		port: port{
			engine:     r.engine,
			logger:     r.logger,
			stream:     stream,
			device:     device,
			bufferSize: bufferSize,
		},
		latency: latency,
	}, nil
}

// Write sends one timestamped event. Timestamps across successive writes
// on a port must be non-decreasing; the port does not enforce or reorder
// them, it passes the packed word through unchanged. Timestamps are
// ignored when the port was opened with zero latency.
func (p *OutputPort) Write(event contracts.Event) error {
	if err := p.guard(); err != nil {
		return err
	}
	return p.engine.WriteShort(p.stream, event.Timestamp, event.Message.Pack()).Err()
}

// WriteMessage sends a short message with timestamp zero, meaning "use the
// current time".
func (p *OutputPort) WriteMessage(msg contracts.Message) error {
	return p.Write(contracts.Event{Message: msg})
}

// WriteEvents sends a batch of events in one engine call. The batch may
// contain short messages or sysex data converted into packed words.
func (p *OutputPort) WriteEvents(events []contracts.Event) error {
	if err := p.guard(); err != nil {
		return err
	}
	packed := make([]contracts.PackedEvent, len(events))
	for i, ev := range events {
		packed[i] = ev.Packed()
	}
	return p.engine.Write(p.stream, packed).Err()
}

// WriteSysEx sends a system-exclusive message stored as a contiguous byte
// slice, splitting it into 4-byte packed words. The timestamp of the first
// word determines when transmission begins on a latency port. The data
// must start with 0xF0 and end with 0xF7.
func (p *OutputPort) WriteSysEx(when contracts.Timestamp, data []byte) error {
	if err := p.guard(); err != nil {
		return err
	}
	packed := make([]contracts.PackedEvent, 0, (len(data)+3)/4)
	var word uint32
	var shift uint
	for _, b := range data {
		word |= uint32(b) << shift
		if shift == 24 {
			packed = append(packed, contracts.PackedEvent{Word: word, Timestamp: when})
			word, shift = 0, 0
			continue
		}
		shift += 8
	}
	if shift > 0 {
		packed = append(packed, contracts.PackedEvent{Word: word, Timestamp: when})
	}
	return p.engine.Write(p.stream, packed).Err()
}

// Abort terminates outgoing transmission immediately, possibly leaving a
// short message partially transmitted. The port stays open; the caller
// should close it next.
func (p *OutputPort) Abort() error {
	if err := p.guard(); err != nil {
		return err
	}
	return p.engine.Abort(p.stream).Err()
}
