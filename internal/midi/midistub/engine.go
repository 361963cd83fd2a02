// Package midistub provides the engine used when a real implementation is
// unavailable on the current platform or build. It initializes cleanly,
// enumerates zero devices and reports a host error for every operation
// that would need the missing native layer.
package midistub

import (
	"sync"

	"github.com/lhpt2/portmidi/sdk/contracts"
)

type stubEngine struct {
	name   string
	reason string
	logger contracts.Logger

	mu      sync.Mutex
	hostErr string
}

// New returns a stub engine. reason describes why the real engine is
// unavailable, e.g. the build tag or platform it requires.
func New(name, reason string, log contracts.Logger) contracts.Engine {
	return &stubEngine{name: name, reason: reason, logger: log}
}

func (e *stubEngine) Name() string { return e.name }

func (e *stubEngine) Initialize() contracts.Status {
	e.logger.Warn("midi engine unavailable, using stub",
		e.logger.Field().String("engine", e.name),
		e.logger.Field().String("reason", e.reason))
	return contracts.StatusNoError
}

func (e *stubEngine) Terminate() contracts.Status { return contracts.StatusNoError }

func (e *stubEngine) CountDevices() int { return 0 }

func (e *stubEngine) DefaultInputDeviceID() contracts.DeviceID { return contracts.NoDevice }

func (e *stubEngine) DefaultOutputDeviceID() contracts.DeviceID { return contracts.NoDevice }

func (e *stubEngine) DeviceInfo(contracts.DeviceID) *contracts.DeviceInfo { return nil }

func (e *stubEngine) CreateVirtualOutput(string) (contracts.DeviceID, contracts.Status) {
	return contracts.NoDevice, e.hostError()
}

func (e *stubEngine) DeleteVirtualDevice(contracts.DeviceID) contracts.Status {
	return e.hostError()
}

func (e *stubEngine) OpenInput(contracts.DeviceID, int) (contracts.StreamHandle, contracts.Status) {
	return nil, e.hostError()
}

func (e *stubEngine) OpenOutput(contracts.DeviceID, int, int) (contracts.StreamHandle, contracts.Status) {
	return nil, e.hostError()
}

func (e *stubEngine) Read(contracts.StreamHandle, []contracts.PackedEvent) int {
	return int(contracts.StatusBadPointer)
}

func (e *stubEngine) Write(contracts.StreamHandle, []contracts.PackedEvent) contracts.Status {
	return contracts.StatusBadPointer
}

func (e *stubEngine) WriteShort(contracts.StreamHandle, contracts.Timestamp, uint32) contracts.Status {
	return contracts.StatusBadPointer
}

func (e *stubEngine) Abort(contracts.StreamHandle) contracts.Status {
	return contracts.StatusBadPointer
}

func (e *stubEngine) Close(contracts.StreamHandle) contracts.Status {
	return contracts.StatusBadPointer
}

func (e *stubEngine) Poll(contracts.StreamHandle) contracts.Status {
	return contracts.StatusBadPointer
}

func (e *stubEngine) HasHostError(contracts.StreamHandle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hostErr != ""
}

func (e *stubEngine) ErrorText(status contracts.Status) string { return status.String() }

func (e *stubEngine) HostErrorText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	msg := e.hostErr
	e.hostErr = ""
	return msg
}

func (e *stubEngine) hostError() contracts.Status {
	e.mu.Lock()
	e.hostErr = e.name + " engine unavailable: " + e.reason
	e.mu.Unlock()
	return contracts.StatusHostError
}
