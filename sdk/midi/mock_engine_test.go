package midi

import (
	"github.com/lhpt2/portmidi/sdk/contracts"
)

// openRecord captures one open call observed by the mock engine.
type openRecord struct {
	id         contracts.DeviceID
	bufferSize int
	latency    int
	input      bool
}

// writeRecord captures one short write observed by the mock engine.
type writeRecord struct {
	when contracts.Timestamp
	word uint32
}

// mockStream is the handle the mock engine issues.
type mockStream struct {
	record openRecord
	closed bool
}

// mockEngine is a scriptable engine that records every call crossing the
// boundary.
type mockEngine struct {
	devices       []contracts.DeviceInfo
	defaultInput  contracts.DeviceID
	defaultOutput contracts.DeviceID

	failInitialize bool
	countOverride  *int
	openInputSt    contracts.Status
	openOutputSt   contracts.Status
	virtualSt      contracts.Status
	deleteSt       contracts.Status
	pollSt         contracts.Status
	readResult     []contracts.PackedEvent
	readStatus     int

	initCalls  int
	termCalls  int
	deletedIDs []contracts.DeviceID
	opens      []openRecord
	writes     []writeRecord
	batches    [][]contracts.PackedEvent
	aborts     int
	closes     int

	virtualNames []string
}

func newMockEngine(devices ...contracts.DeviceInfo) *mockEngine {
	return &mockEngine{
		devices:       devices,
		defaultInput:  contracts.NoDevice,
		defaultOutput: contracts.NoDevice,
	}
}

func (m *mockEngine) Name() string { return "mock" }

func (m *mockEngine) Initialize() contracts.Status {
	m.initCalls++
	if m.failInitialize {
		return contracts.StatusHostError
	}
	return contracts.StatusNoError
}

func (m *mockEngine) Terminate() contracts.Status {
	m.termCalls++
	return contracts.StatusNoError
}

func (m *mockEngine) CountDevices() int {
	if m.countOverride != nil {
		return *m.countOverride
	}
	return len(m.devices)
}

func (m *mockEngine) DefaultInputDeviceID() contracts.DeviceID  { return m.defaultInput }
func (m *mockEngine) DefaultOutputDeviceID() contracts.DeviceID { return m.defaultOutput }

func (m *mockEngine) DeviceInfo(id contracts.DeviceID) *contracts.DeviceInfo {
	if id < 0 || int(id) >= len(m.devices) {
		return nil
	}
	info := m.devices[id]
	return &info
}

func (m *mockEngine) CreateVirtualOutput(name string) (contracts.DeviceID, contracts.Status) {
	if m.virtualSt != contracts.StatusNoError {
		return contracts.NoDevice, m.virtualSt
	}
	for _, taken := range m.virtualNames {
		if taken == name {
			return contracts.NoDevice, contracts.StatusInvalidDeviceID
		}
	}
	m.virtualNames = append(m.virtualNames, name)
	id := contracts.DeviceID(len(m.devices))
	m.devices = append(m.devices, contracts.DeviceInfo{
		ID:        id,
		Interface: "mock",
		Name:      name,
		IsOutput:  true,
	})
	return id, contracts.StatusNoError
}

func (m *mockEngine) DeleteVirtualDevice(id contracts.DeviceID) contracts.Status {
	m.deletedIDs = append(m.deletedIDs, id)
	if m.deleteSt != contracts.StatusNoError {
		return m.deleteSt
	}
	return contracts.StatusNoError
}

func (m *mockEngine) OpenInput(id contracts.DeviceID, bufferSize int) (contracts.StreamHandle, contracts.Status) {
	if m.openInputSt != contracts.StatusNoError {
		return nil, m.openInputSt
	}
	rec := openRecord{id: id, bufferSize: bufferSize, input: true}
	m.opens = append(m.opens, rec)
	return &mockStream{record: rec}, contracts.StatusNoError
}

func (m *mockEngine) OpenOutput(id contracts.DeviceID, bufferSize, latency int) (contracts.StreamHandle, contracts.Status) {
	if m.openOutputSt != contracts.StatusNoError {
		return nil, m.openOutputSt
	}
	rec := openRecord{id: id, bufferSize: bufferSize, latency: latency}
	m.opens = append(m.opens, rec)
	return &mockStream{record: rec}, contracts.StatusNoError
}

func (m *mockEngine) Read(stream contracts.StreamHandle, buf []contracts.PackedEvent) int {
	if m.readStatus != 0 {
		st := m.readStatus
		m.readStatus = 0
		return st
	}
	n := copy(buf, m.readResult)
	m.readResult = m.readResult[n:]
	return n
}

func (m *mockEngine) Write(stream contracts.StreamHandle, events []contracts.PackedEvent) contracts.Status {
	batch := make([]contracts.PackedEvent, len(events))
	copy(batch, events)
	m.batches = append(m.batches, batch)
	return contracts.StatusNoError
}

func (m *mockEngine) WriteShort(stream contracts.StreamHandle, when contracts.Timestamp, word uint32) contracts.Status {
	m.writes = append(m.writes, writeRecord{when: when, word: word})
	return contracts.StatusNoError
}

func (m *mockEngine) Abort(stream contracts.StreamHandle) contracts.Status {
	m.aborts++
	return contracts.StatusNoError
}

func (m *mockEngine) Close(stream contracts.StreamHandle) contracts.Status {
	m.closes++
	if s, ok := stream.(*mockStream); ok {
		s.closed = true
	}
	return contracts.StatusNoError
}

func (m *mockEngine) Poll(stream contracts.StreamHandle) contracts.Status {
	return m.pollSt
}

func (m *mockEngine) HasHostError(stream contracts.StreamHandle) bool { return false }

func (m *mockEngine) ErrorText(status contracts.Status) string { return status.String() }

func (m *mockEngine) HostErrorText() string { return "" }
