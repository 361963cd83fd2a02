//go:build rtmidi_native

package midirtmidi

import (
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/lhpt2/portmidi/internal/midi/midistream"
	"github.com/lhpt2/portmidi/sdk/contracts"
)

// rtEngine enumerates rtmidi input ports first, then output ports, so
// device ids [0, len(ins)) are inputs and the rest are outputs.
type rtEngine struct {
	logger contracts.Logger

	mu      sync.Mutex
	drv     *rtmididrv.Driver
	ins     []drivers.In
	outs    []drivers.Out
	opened  map[contracts.DeviceID]bool
	hostErr string
}

// New returns the rtmidi-backed engine.
func New(opts *contracts.ClientOptions) contracts.Engine {
	return &rtEngine{logger: opts.Logger, opened: map[contracts.DeviceID]bool{}}
}

type rtInStream struct {
	id     contracts.DeviceID
	in     drivers.In
	stop   func()
	parser *midistream.Parser
	queue  *midistream.Queue
}

type rtOutStream struct {
	id  contracts.DeviceID
	out drivers.Out

	// inSysex carries sysex reassembly state across Write batches.
	inSysex bool
	sysex   []byte
}

func (e *rtEngine) Name() string { return Name }

func (e *rtEngine) Initialize() contracts.Status {
	drv, err := rtmididrv.New()
	if err != nil {
		return e.hostError("rtmididrv: " + err.Error())
	}
	ins, err := drv.Ins()
	if err != nil {
		_ = drv.Close()
		return e.hostError("could not list inputs: " + err.Error())
	}
	outs, err := drv.Outs()
	if err != nil {
		_ = drv.Close()
		return e.hostError("could not list outputs: " + err.Error())
	}

	e.mu.Lock()
	e.drv = drv
	e.ins = ins
	e.outs = outs
	e.mu.Unlock()

	e.logger.Info("rtmidi engine initialized",
		e.logger.Field().Int("inputs", len(ins)),
		e.logger.Field().Int("outputs", len(outs)))
	return contracts.StatusNoError
}

func (e *rtEngine) Terminate() contracts.Status {
	e.mu.Lock()
	drv := e.drv
	e.drv = nil
	e.ins = nil
	e.outs = nil
	e.opened = map[contracts.DeviceID]bool{}
	e.mu.Unlock()

	if drv != nil {
		if err := drv.Close(); err != nil {
			return e.hostError("could not close driver: " + err.Error())
		}
	}
	return contracts.StatusNoError
}

func (e *rtEngine) CountDevices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.ins) + len(e.outs)
}

func (e *rtEngine) DefaultInputDeviceID() contracts.DeviceID {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.ins) == 0 {
		return contracts.NoDevice
	}
	return 0
}

func (e *rtEngine) DefaultOutputDeviceID() contracts.DeviceID {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.outs) == 0 {
		return contracts.NoDevice
	}
	return contracts.DeviceID(len(e.ins))
}

func (e *rtEngine) DeviceInfo(id contracts.DeviceID) *contracts.DeviceInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case id >= 0 && int(id) < len(e.ins):
		return &contracts.DeviceInfo{
			ID:        id,
			Interface: "rtmidi",
			Name:      e.ins[id].String(),
			IsInput:   true,
			IsOpened:  e.opened[id],
		}
	case int(id) >= len(e.ins) && int(id) < len(e.ins)+len(e.outs):
		return &contracts.DeviceInfo{
			ID:        id,
			Interface: "rtmidi",
			Name:      e.outs[int(id)-len(e.ins)].String(),
			IsOutput:  true,
			IsOpened:  e.opened[id],
		}
	default:
		return nil
	}
}

func (e *rtEngine) CreateVirtualOutput(string) (contracts.DeviceID, contracts.Status) {
	return contracts.NoDevice, e.hostError("virtual outputs are not supported by the rtmidi engine")
}

func (e *rtEngine) DeleteVirtualDevice(contracts.DeviceID) contracts.Status {
	return e.hostError("virtual outputs are not supported by the rtmidi engine")
}

func (e *rtEngine) OpenInput(id contracts.DeviceID, bufferSize int) (contracts.StreamHandle, contracts.Status) {
	e.mu.Lock()
	if id < 0 || int(id) >= len(e.ins) {
		e.mu.Unlock()
		return nil, contracts.StatusInvalidDeviceID
	}
	if e.opened[id] {
		e.mu.Unlock()
		return nil, contracts.StatusInvalidDeviceID
	}
	in := e.ins[id]
	e.mu.Unlock()

	if err := in.Open(); err != nil {
		return nil, e.hostError("could not open input: " + err.Error())
	}

	stream := &rtInStream{
		id:     id,
		in:     in,
		parser: midistream.NewParser(),
		queue:  midistream.NewQueue(bufferSize),
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		ts := contracts.Timestamp(uint32(timestampms))
		for _, ev := range stream.parser.Feed(ts, []byte(msg)) {
			if stream.queue.Push(ev) {
				stream.parser.Reset()
			}
		}
	}, midi.HandleError(func(listenErr error) {
		e.logger.Warn("rtmidi listener error",
			e.logger.Field().Int("device", int(id)),
			e.logger.Field().Error("error", listenErr))
	}))
	if err != nil {
		_ = in.Close()
		return nil, e.hostError("could not listen: " + err.Error())
	}
	stream.stop = stop

	e.mu.Lock()
	e.opened[id] = true
	e.mu.Unlock()
	return stream, contracts.StatusNoError
}

func (e *rtEngine) OpenOutput(id contracts.DeviceID, _, _ int) (contracts.StreamHandle, contracts.Status) {
	e.mu.Lock()
	idx := int(id) - len(e.ins)
	if idx < 0 || idx >= len(e.outs) {
		e.mu.Unlock()
		return nil, contracts.StatusInvalidDeviceID
	}
	if e.opened[id] {
		e.mu.Unlock()
		return nil, contracts.StatusInvalidDeviceID
	}
	out := e.outs[idx]
	e.mu.Unlock()

	if err := out.Open(); err != nil {
		return nil, e.hostError("could not open output: " + err.Error())
	}

	e.mu.Lock()
	e.opened[id] = true
	e.mu.Unlock()
	return &rtOutStream{id: id, out: out}, contracts.StatusNoError
}

func (e *rtEngine) Read(stream contracts.StreamHandle, buf []contracts.PackedEvent) int {
	s, ok := stream.(*rtInStream)
	if !ok {
		return int(contracts.StatusBadPointer)
	}
	return s.queue.Read(buf)
}

func (e *rtEngine) Write(stream contracts.StreamHandle, events []contracts.PackedEvent) contracts.Status {
	s, ok := stream.(*rtOutStream)
	if !ok {
		return contracts.StatusBadPointer
	}
	for _, ev := range events {
		if st := e.writeWord(s, ev.Word); st != contracts.StatusNoError {
			return st
		}
	}
	return contracts.StatusNoError
}

// writeWord unpacks one wire word and forwards complete messages to the
// rtmidi port. Sysex words are buffered until the EOX byte arrives.
func (e *rtEngine) writeWord(s *rtOutStream, word uint32) contracts.Status {
	bytes := [4]byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}

	// A real-time word interleaved between sysex words is forwarded on its
	// own without touching the buffered sysex bytes.
	if s.inSysex && midistream.IsRealTime(bytes[0]) {
		return e.send(s, []byte{bytes[0]})
	}

	if !s.inSysex {
		if bytes[0] == 0xF0 {
			s.inSysex = true
			s.sysex = s.sysex[:0]
		} else {
			return e.send(s, midistream.ShortBytes(word))
		}
	}

	for _, b := range bytes {
		s.sysex = append(s.sysex, b)
		if b == 0xF7 {
			s.inSysex = false
			return e.send(s, s.sysex)
		}
	}
	return contracts.StatusNoError
}

func (e *rtEngine) send(s *rtOutStream, data []byte) contracts.Status {
	if err := s.out.Send(data); err != nil {
		return e.hostError("send failed: " + err.Error())
	}
	return contracts.StatusNoError
}

func (e *rtEngine) WriteShort(stream contracts.StreamHandle, _ contracts.Timestamp, word uint32) contracts.Status {
	s, ok := stream.(*rtOutStream)
	if !ok {
		return contracts.StatusBadPointer
	}
	return e.writeWord(s, word)
}

func (e *rtEngine) Abort(stream contracts.StreamHandle) contracts.Status {
	s, ok := stream.(*rtOutStream)
	if !ok {
		return contracts.StatusBadPointer
	}
	// rtmidi has no abort; drop any buffered partial sysex.
	s.inSysex = false
	s.sysex = s.sysex[:0]
	return contracts.StatusNoError
}

func (e *rtEngine) Close(stream contracts.StreamHandle) contracts.Status {
	switch s := stream.(type) {
	case *rtInStream:
		if s.stop != nil {
			s.stop()
			s.stop = nil
		}
		err := s.in.Close()
		e.markClosed(s.id)
		if err != nil {
			return e.hostError("could not close input: " + err.Error())
		}
		return contracts.StatusNoError
	case *rtOutStream:
		err := s.out.Close()
		e.markClosed(s.id)
		if err != nil {
			return e.hostError("could not close output: " + err.Error())
		}
		return contracts.StatusNoError
	default:
		return contracts.StatusBadPointer
	}
}

func (e *rtEngine) markClosed(id contracts.DeviceID) {
	e.mu.Lock()
	delete(e.opened, id)
	e.mu.Unlock()
}

func (e *rtEngine) Poll(stream contracts.StreamHandle) contracts.Status {
	s, ok := stream.(*rtInStream)
	if !ok {
		return contracts.StatusBadPointer
	}
	return s.queue.Poll()
}

func (e *rtEngine) HasHostError(contracts.StreamHandle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hostErr != ""
}

func (e *rtEngine) ErrorText(status contracts.Status) string {
	return status.String()
}

func (e *rtEngine) HostErrorText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	msg := e.hostErr
	e.hostErr = ""
	return msg
}

func (e *rtEngine) hostError(msg string) contracts.Status {
	e.logger.Warn("rtmidi host error", e.logger.Field().String("detail", msg))
	e.mu.Lock()
	e.hostErr = msg
	e.mu.Unlock()
	return contracts.StatusHostError
}
