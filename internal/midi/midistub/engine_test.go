package midistub

import (
	"strings"
	"testing"

	"github.com/lhpt2/portmidi/internal/logger"
	"github.com/lhpt2/portmidi/sdk/contracts"
)

func TestStubEngine(t *testing.T) {
	e := New("coremidi", "only available on darwin", logger.NewNopLogger())

	if e.Name() != "coremidi" {
		t.Fatalf("Name() = %q", e.Name())
	}
	if st := e.Initialize(); st != contracts.StatusNoError {
		t.Fatalf("Initialize() = %v", st)
	}
	if n := e.CountDevices(); n != 0 {
		t.Fatalf("CountDevices() = %d, want 0", n)
	}
	if id := e.DefaultInputDeviceID(); id != contracts.NoDevice {
		t.Fatalf("DefaultInputDeviceID() = %d", id)
	}
	if info := e.DeviceInfo(0); info != nil {
		t.Fatalf("DeviceInfo(0) = %+v, want nil", info)
	}
	if st := e.Terminate(); st != contracts.StatusNoError {
		t.Fatalf("Terminate() = %v", st)
	}
}

func TestStubEngineHostError(t *testing.T) {
	e := New("rawmidi", "only available on linux", logger.NewNopLogger())

	if _, st := e.OpenInput(0, 64); st != contracts.StatusHostError {
		t.Fatalf("OpenInput status = %v, want %v", st, contracts.StatusHostError)
	}
	if !e.HasHostError(nil) {
		t.Fatal("HasHostError = false after failed open")
	}
	msg := e.HostErrorText()
	if !strings.Contains(msg, "rawmidi") || !strings.Contains(msg, "linux") {
		t.Fatalf("host error text = %q", msg)
	}
	// Retrieval clears the pending error.
	if e.HasHostError(nil) {
		t.Fatal("HasHostError = true after retrieval")
	}
	if e.HostErrorText() != "" {
		t.Fatal("host error text not cleared")
	}

	if st := e.WriteShort(nil, 0, 0x00643C90); st != contracts.StatusBadPointer {
		t.Fatalf("WriteShort status = %v, want %v", st, contracts.StatusBadPointer)
	}
}
