package midiserial

import (
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/lhpt2/portmidi/internal/midi/midistream"
	"github.com/lhpt2/portmidi/sdk/contracts"
)

// MIDIBaudRate is the wire rate of a DIN MIDI connection.
const MIDIBaudRate = 31250

type serialEngine struct {
	logger contracts.Logger

	mu      sync.Mutex
	ports   []string
	opened  map[contracts.DeviceID]bool
	start   time.Time
	hostErr string
}

// New returns the serial-line engine.
func New(opts *contracts.ClientOptions) contracts.Engine {
	return &serialEngine{logger: opts.Logger, opened: map[contracts.DeviceID]bool{}}
}

type serialStream struct {
	id    contracts.DeviceID
	port  serial.Port
	input bool

	queue *midistream.Queue

	// Output sysex state across write batches.
	inSysex bool
}

func (e *serialEngine) Name() string { return Name }

func (e *serialEngine) Initialize() contracts.Status {
	ports, err := serial.GetPortsList()
	if err != nil {
		e.logger.Warn("serial: cannot enumerate ports",
			e.logger.Field().Error("error", err))
		ports = nil
	}

	e.mu.Lock()
	e.ports = ports
	e.start = time.Now()
	e.mu.Unlock()

	e.logger.Info("serial engine initialized",
		e.logger.Field().Int("ports", len(ports)))
	return contracts.StatusNoError
}

func (e *serialEngine) Terminate() contracts.Status {
	e.mu.Lock()
	e.ports = nil
	e.opened = map[contracts.DeviceID]bool{}
	e.mu.Unlock()
	return contracts.StatusNoError
}

func (e *serialEngine) CountDevices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.ports)
}

func (e *serialEngine) DefaultInputDeviceID() contracts.DeviceID  { return e.firstDevice() }
func (e *serialEngine) DefaultOutputDeviceID() contracts.DeviceID { return e.firstDevice() }

func (e *serialEngine) firstDevice() contracts.DeviceID {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.ports) == 0 {
		return contracts.NoDevice
	}
	return 0
}

func (e *serialEngine) DeviceInfo(id contracts.DeviceID) *contracts.DeviceInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id < 0 || int(id) >= len(e.ports) {
		return nil
	}
	return &contracts.DeviceInfo{
		ID:        id,
		Interface: "serial",
		Name:      e.ports[id],
		IsInput:   true,
		IsOutput:  true,
		IsOpened:  e.opened[id],
	}
}

func (e *serialEngine) CreateVirtualOutput(string) (contracts.DeviceID, contracts.Status) {
	return contracts.NoDevice, e.hostError("virtual outputs are not supported by the serial engine")
}

func (e *serialEngine) DeleteVirtualDevice(contracts.DeviceID) contracts.Status {
	return e.hostError("virtual outputs are not supported by the serial engine")
}

func (e *serialEngine) OpenInput(id contracts.DeviceID, bufferSize int) (contracts.StreamHandle, contracts.Status) {
	stream, st := e.open(id, true)
	if st != contracts.StatusNoError {
		return nil, st
	}
	stream.queue = midistream.NewQueue(bufferSize)
	go e.readLoop(stream)
	return stream, contracts.StatusNoError
}

func (e *serialEngine) OpenOutput(id contracts.DeviceID, _, _ int) (contracts.StreamHandle, contracts.Status) {
	stream, st := e.open(id, false)
	if st != contracts.StatusNoError {
		return nil, st
	}
	return stream, contracts.StatusNoError
}

func (e *serialEngine) open(id contracts.DeviceID, input bool) (*serialStream, contracts.Status) {
	e.mu.Lock()
	if id < 0 || int(id) >= len(e.ports) {
		e.mu.Unlock()
		return nil, contracts.StatusInvalidDeviceID
	}
	if e.opened[id] {
		e.mu.Unlock()
		return nil, contracts.StatusInvalidDeviceID
	}
	name := e.ports[id]
	e.mu.Unlock()

	port, err := serial.Open(name, &serial.Mode{BaudRate: MIDIBaudRate})
	if err != nil {
		return nil, e.hostError("open " + name + ": " + err.Error())
	}

	e.mu.Lock()
	e.opened[id] = true
	e.mu.Unlock()

	e.logger.Debug("serial port opened",
		e.logger.Field().String("port", name),
		e.logger.Field().Bool("input", input))
	return &serialStream{id: id, port: port, input: input}, contracts.StatusNoError
}

// readLoop drains the serial line into the stream's queue until the port
// is closed underneath it.
func (e *serialEngine) readLoop(s *serialStream) {
	parser := midistream.NewParser()
	buf := make([]byte, 64)
	for {
		n, err := s.port.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		ts := e.now()
		for _, ev := range parser.Feed(ts, buf[:n]) {
			if s.queue.Push(ev) {
				parser.Reset()
			}
		}
	}
}

func (e *serialEngine) now() contracts.Timestamp {
	e.mu.Lock()
	start := e.start
	e.mu.Unlock()
	return contracts.Timestamp(time.Since(start).Milliseconds())
}

func (e *serialEngine) Read(stream contracts.StreamHandle, buf []contracts.PackedEvent) int {
	s, ok := stream.(*serialStream)
	if !ok || !s.input {
		return int(contracts.StatusBadPointer)
	}
	return s.queue.Read(buf)
}

func (e *serialEngine) Write(stream contracts.StreamHandle, events []contracts.PackedEvent) contracts.Status {
	s, ok := stream.(*serialStream)
	if !ok || s.input {
		return contracts.StatusBadPointer
	}
	var data []byte
	for _, ev := range events {
		data, s.inSysex = midistream.AppendWire(data, s.inSysex, ev.Word)
	}
	if _, err := s.port.Write(data); err != nil {
		return e.hostError("write: " + err.Error())
	}
	return contracts.StatusNoError
}

func (e *serialEngine) WriteShort(stream contracts.StreamHandle, _ contracts.Timestamp, word uint32) contracts.Status {
	s, ok := stream.(*serialStream)
	if !ok || s.input {
		return contracts.StatusBadPointer
	}
	data, inSysex := midistream.AppendWire(nil, s.inSysex, word)
	s.inSysex = inSysex
	if _, err := s.port.Write(data); err != nil {
		return e.hostError("write: " + err.Error())
	}
	return contracts.StatusNoError
}

func (e *serialEngine) Abort(stream contracts.StreamHandle) contracts.Status {
	s, ok := stream.(*serialStream)
	if !ok || s.input {
		return contracts.StatusBadPointer
	}
	s.inSysex = false
	if err := s.port.ResetOutputBuffer(); err != nil {
		return e.hostError("abort: " + err.Error())
	}
	return contracts.StatusNoError
}

func (e *serialEngine) Close(stream contracts.StreamHandle) contracts.Status {
	s, ok := stream.(*serialStream)
	if !ok {
		return contracts.StatusBadPointer
	}
	err := s.port.Close()
	e.mu.Lock()
	delete(e.opened, s.id)
	e.mu.Unlock()
	if err != nil {
		return e.hostError("close: " + err.Error())
	}
	return contracts.StatusNoError
}

func (e *serialEngine) Poll(stream contracts.StreamHandle) contracts.Status {
	s, ok := stream.(*serialStream)
	if !ok || !s.input {
		return contracts.StatusBadPointer
	}
	return s.queue.Poll()
}

func (e *serialEngine) HasHostError(contracts.StreamHandle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hostErr != ""
}

func (e *serialEngine) ErrorText(status contracts.Status) string {
	return status.String()
}

func (e *serialEngine) HostErrorText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	msg := e.hostErr
	e.hostErr = ""
	return msg
}

func (e *serialEngine) hostError(msg string) contracts.Status {
	e.logger.Warn("serial host error", e.logger.Field().String("detail", msg))
	e.mu.Lock()
	e.hostErr = msg
	e.mu.Unlock()
	return contracts.StatusHostError
}
