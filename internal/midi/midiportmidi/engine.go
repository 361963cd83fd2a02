//go:build portmidi_native

package midiportmidi

// #cgo LDFLAGS: -lportmidi
// #include <stdlib.h>
// #include <portmidi.h>
import "C"

import (
	"unsafe"

	"github.com/lhpt2/portmidi/sdk/contracts"
)

type pmEngine struct {
	logger contracts.Logger
}

// New returns the PortMidi-backed engine.
func New(opts *contracts.ClientOptions) contracts.Engine {
	return &pmEngine{logger: opts.Logger}
}

// pmStream wraps the raw PortMidiStream pointer handed out by Pm_OpenInput
// and Pm_OpenOutput.
type pmStream struct {
	ptr unsafe.Pointer
}

func (e *pmEngine) Name() string { return Name }

func (e *pmEngine) Initialize() contracts.Status {
	return contracts.Status(C.Pm_Initialize())
}

func (e *pmEngine) Terminate() contracts.Status {
	return contracts.Status(C.Pm_Terminate())
}

func (e *pmEngine) CountDevices() int {
	return int(C.Pm_CountDevices())
}

func (e *pmEngine) DefaultInputDeviceID() contracts.DeviceID {
	return contracts.DeviceID(C.Pm_GetDefaultInputDeviceID())
}

func (e *pmEngine) DefaultOutputDeviceID() contracts.DeviceID {
	return contracts.DeviceID(C.Pm_GetDefaultOutputDeviceID())
}

func (e *pmEngine) DeviceInfo(id contracts.DeviceID) *contracts.DeviceInfo {
	info := C.Pm_GetDeviceInfo(C.PmDeviceID(id))
	if info == nil {
		return nil
	}
	return &contracts.DeviceInfo{
		ID:        id,
		Interface: C.GoString(info.interf),
		Name:      C.GoString(info.name),
		IsInput:   info.input > 0,
		IsOutput:  info.output > 0,
		IsOpened:  info.opened > 0,
	}
}

func (e *pmEngine) CreateVirtualOutput(name string) (contracts.DeviceID, contracts.Status) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	rc := C.Pm_CreateVirtualOutput(cname, nil, nil)
	if rc < 0 {
		return contracts.NoDevice, contracts.Status(rc)
	}
	return contracts.DeviceID(rc), contracts.StatusNoError
}

func (e *pmEngine) DeleteVirtualDevice(id contracts.DeviceID) contracts.Status {
	return contracts.Status(C.Pm_DeleteVirtualDevice(C.PmDeviceID(id)))
}

func (e *pmEngine) OpenInput(id contracts.DeviceID, bufferSize int) (contracts.StreamHandle, contracts.Status) {
	s := &pmStream{}
	rc := C.Pm_OpenInput(&s.ptr, C.PmDeviceID(id), nil, C.int32_t(bufferSize), nil, nil)
	if rc != C.pmNoError {
		return nil, contracts.Status(rc)
	}
	return s, contracts.StatusNoError
}

func (e *pmEngine) OpenOutput(id contracts.DeviceID, bufferSize, latency int) (contracts.StreamHandle, contracts.Status) {
	s := &pmStream{}
	rc := C.Pm_OpenOutput(&s.ptr, C.PmDeviceID(id), nil, C.int32_t(bufferSize), nil, nil, C.int32_t(latency))
	if rc != C.pmNoError {
		return nil, contracts.Status(rc)
	}
	return s, contracts.StatusNoError
}

func (e *pmEngine) Read(stream contracts.StreamHandle, buf []contracts.PackedEvent) int {
	s, ok := stream.(*pmStream)
	if !ok || len(buf) == 0 {
		return int(contracts.StatusBadPointer)
	}
	cbuf := make([]C.PmEvent, len(buf))
	n := C.Pm_Read(s.ptr, &cbuf[0], C.int32_t(len(buf)))
	if n < 0 {
		return int(n)
	}
	for i := 0; i < int(n); i++ {
		buf[i] = contracts.PackedEvent{
			Word:      uint32(cbuf[i].message),
			Timestamp: contracts.Timestamp(cbuf[i].timestamp),
		}
	}
	return int(n)
}

func (e *pmEngine) Write(stream contracts.StreamHandle, events []contracts.PackedEvent) contracts.Status {
	s, ok := stream.(*pmStream)
	if !ok {
		return contracts.StatusBadPointer
	}
	if len(events) == 0 {
		return contracts.StatusNoError
	}
	cbuf := make([]C.PmEvent, len(events))
	for i, ev := range events {
		cbuf[i].message = C.PmMessage(ev.Word)
		cbuf[i].timestamp = C.PmTimestamp(ev.Timestamp)
	}
	return contracts.Status(C.Pm_Write(s.ptr, &cbuf[0], C.int32_t(len(events))))
}

func (e *pmEngine) WriteShort(stream contracts.StreamHandle, when contracts.Timestamp, word uint32) contracts.Status {
	s, ok := stream.(*pmStream)
	if !ok {
		return contracts.StatusBadPointer
	}
	return contracts.Status(C.Pm_WriteShort(s.ptr, C.PmTimestamp(when), C.PmMessage(word)))
}

func (e *pmEngine) Abort(stream contracts.StreamHandle) contracts.Status {
	s, ok := stream.(*pmStream)
	if !ok {
		return contracts.StatusBadPointer
	}
	return contracts.Status(C.Pm_Abort(s.ptr))
}

func (e *pmEngine) Close(stream contracts.StreamHandle) contracts.Status {
	s, ok := stream.(*pmStream)
	if !ok {
		return contracts.StatusBadPointer
	}
	return contracts.Status(C.Pm_Close(s.ptr))
}

func (e *pmEngine) Poll(stream contracts.StreamHandle) contracts.Status {
	s, ok := stream.(*pmStream)
	if !ok {
		return contracts.StatusBadPointer
	}
	return contracts.Status(C.Pm_Poll(s.ptr))
}

func (e *pmEngine) HasHostError(stream contracts.StreamHandle) bool {
	s, ok := stream.(*pmStream)
	if !ok {
		return false
	}
	return C.Pm_HasHostError(s.ptr) != 0
}

func (e *pmEngine) ErrorText(status contracts.Status) string {
	return C.GoString(C.Pm_GetErrorText(C.PmError(status)))
}

func (e *pmEngine) HostErrorText() string {
	cbuf := (*C.char)(C.malloc(C.size_t(contracts.HostErrorMsgLen)))
	defer C.free(unsafe.Pointer(cbuf))
	C.Pm_GetHostErrorText(cbuf, C.uint(contracts.HostErrorMsgLen))
	return C.GoString(cbuf)
}
