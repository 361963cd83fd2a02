//go:build darwin

package midicoremidi

import (
	"sync"
	"time"

	"github.com/youpy/go-coremidi"

	"github.com/lhpt2/portmidi/internal/midi/midistream"
	"github.com/lhpt2/portmidi/sdk/contracts"
)

// internalPortConnection is the part of a CoreMIDI port connection we need
// for teardown.
type internalPortConnection interface {
	Disconnect()
}

type cmEngine struct {
	logger     contracts.Logger
	clientName string

	mu      sync.Mutex
	client  coremidi.Client
	sources []coremidi.Source
	opened  map[contracts.DeviceID]bool
	start   time.Time
	hostErr string
}

// New returns the CoreMIDI-backed input engine.
func New(opts *contracts.ClientOptions) contracts.Engine {
	return &cmEngine{
		logger:     opts.Logger,
		clientName: opts.ClientName,
		opened:     map[contracts.DeviceID]bool{},
	}
}

// cmStream is an open input stream: a connected CoreMIDI input port
// feeding a bounded queue through the shared byte-stream parser.
type cmStream struct {
	id     contracts.DeviceID
	conn   internalPortConnection
	parser *midistream.Parser
	queue  *midistream.Queue
}

func (e *cmEngine) Name() string { return Name }

func (e *cmEngine) Initialize() contracts.Status {
	client, err := coremidi.NewClient(e.clientName)
	if err != nil {
		return e.hostError("could not create CoreMIDI client: " + err.Error())
	}
	sources, err := coremidi.AllSources()
	if err != nil {
		return e.hostError("could not list CoreMIDI sources: " + err.Error())
	}

	e.mu.Lock()
	e.client = client
	e.sources = sources
	e.start = time.Now()
	e.mu.Unlock()

	e.logger.Info("coremidi engine initialized",
		e.logger.Field().Int("sources", len(sources)))
	return contracts.StatusNoError
}

func (e *cmEngine) Terminate() contracts.Status {
	e.mu.Lock()
	e.sources = nil
	e.opened = map[contracts.DeviceID]bool{}
	e.mu.Unlock()
	return contracts.StatusNoError
}

func (e *cmEngine) CountDevices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sources)
}

func (e *cmEngine) DefaultInputDeviceID() contracts.DeviceID {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.sources) == 0 {
		return contracts.NoDevice
	}
	return 0
}

func (e *cmEngine) DefaultOutputDeviceID() contracts.DeviceID {
	return contracts.NoDevice
}

func (e *cmEngine) DeviceInfo(id contracts.DeviceID) *contracts.DeviceInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id < 0 || int(id) >= len(e.sources) {
		return nil
	}
	source := e.sources[id]
	return &contracts.DeviceInfo{
		ID:        id,
		Interface: "CoreMIDI",
		Name:      source.Name(),
		IsInput:   true,
		IsOutput:  false,
		IsOpened:  e.opened[id],
	}
}

func (e *cmEngine) CreateVirtualOutput(string) (contracts.DeviceID, contracts.Status) {
	return contracts.NoDevice, e.hostError("virtual outputs are not supported by the coremidi engine")
}

func (e *cmEngine) DeleteVirtualDevice(contracts.DeviceID) contracts.Status {
	return e.hostError("virtual outputs are not supported by the coremidi engine")
}

func (e *cmEngine) OpenInput(id contracts.DeviceID, bufferSize int) (contracts.StreamHandle, contracts.Status) {
	e.mu.Lock()
	if id < 0 || int(id) >= len(e.sources) {
		e.mu.Unlock()
		return nil, contracts.StatusInvalidDeviceID
	}
	if e.opened[id] {
		e.mu.Unlock()
		return nil, contracts.StatusInvalidDeviceID
	}
	client := e.client
	source := e.sources[id]
	start := e.start
	e.mu.Unlock()

	stream := &cmStream{
		id:     id,
		parser: midistream.NewParser(),
		queue:  midistream.NewQueue(bufferSize),
	}

	port, err := coremidi.NewInputPort(client, e.clientName, func(src coremidi.Source, packet coremidi.Packet) {
		ts := contracts.Timestamp(time.Since(start).Milliseconds())
		for _, ev := range stream.parser.Feed(ts, packet.Data) {
			if stream.queue.Push(ev) {
				// Buffer flushed; a partial sysex must not be resumed.
				stream.parser.Reset()
			}
		}
	})
	if err != nil {
		return nil, e.hostError("could not create input port: " + err.Error())
	}

	conn, err := port.Connect(source)
	if err != nil {
		return nil, e.hostError("could not connect to source: " + err.Error())
	}
	stream.conn = conn

	e.mu.Lock()
	e.opened[id] = true
	e.mu.Unlock()

	e.logger.Debug("coremidi source connected",
		e.logger.Field().Int("device", int(id)),
		e.logger.Field().String("name", source.Name()))
	return stream, contracts.StatusNoError
}

func (e *cmEngine) OpenOutput(contracts.DeviceID, int, int) (contracts.StreamHandle, contracts.Status) {
	// No output devices are enumerated, so every output open is invalid.
	return nil, contracts.StatusInvalidDeviceID
}

func (e *cmEngine) Read(stream contracts.StreamHandle, buf []contracts.PackedEvent) int {
	s, ok := stream.(*cmStream)
	if !ok {
		return int(contracts.StatusBadPointer)
	}
	return s.queue.Read(buf)
}

func (e *cmEngine) Write(contracts.StreamHandle, []contracts.PackedEvent) contracts.Status {
	return contracts.StatusBadPointer
}

func (e *cmEngine) WriteShort(contracts.StreamHandle, contracts.Timestamp, uint32) contracts.Status {
	return contracts.StatusBadPointer
}

func (e *cmEngine) Abort(contracts.StreamHandle) contracts.Status {
	return contracts.StatusBadPointer
}

func (e *cmEngine) Close(stream contracts.StreamHandle) contracts.Status {
	s, ok := stream.(*cmStream)
	if !ok {
		return contracts.StatusBadPointer
	}
	if s.conn != nil {
		s.conn.Disconnect()
		s.conn = nil
	}
	e.mu.Lock()
	delete(e.opened, s.id)
	e.mu.Unlock()
	return contracts.StatusNoError
}

func (e *cmEngine) Poll(stream contracts.StreamHandle) contracts.Status {
	s, ok := stream.(*cmStream)
	if !ok {
		return contracts.StatusBadPointer
	}
	return s.queue.Poll()
}

func (e *cmEngine) HasHostError(contracts.StreamHandle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hostErr != ""
}

func (e *cmEngine) ErrorText(status contracts.Status) string {
	return status.String()
}

func (e *cmEngine) HostErrorText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	msg := e.hostErr
	e.hostErr = ""
	return msg
}

func (e *cmEngine) hostError(msg string) contracts.Status {
	e.logger.Warn("coremidi host error", e.logger.Field().String("detail", msg))
	e.mu.Lock()
	e.hostErr = msg
	e.mu.Unlock()
	return contracts.StatusHostError
}
