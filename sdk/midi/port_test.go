package midi

import (
	"errors"
	"testing"

	"github.com/lhpt2/portmidi/sdk/contracts"
)

func TestOutputPortLifecycle(t *testing.T) {
	engine := newMockEngine(testDevices()...)
	engine.defaultOutput = 2
	r := newTestRegistry(t, engine)
	defer r.Close()

	out, err := r.DefaultOutputPort(100)
	if err != nil {
		t.Fatalf("DefaultOutputPort: %v", err)
	}
	if len(engine.opens) != 1 {
		t.Fatalf("engine saw %d opens, want 1", len(engine.opens))
	}
	if rec := engine.opens[0]; rec.id != 2 || rec.bufferSize != 100 || rec.input {
		t.Fatalf("open record = %+v", rec)
	}
	if out.Device().ID != 2 {
		t.Fatalf("Device().ID = %d, want 2", out.Device().ID)
	}

	msg := contracts.Message{Status: contracts.NoteOn, Data1: 60, Data2: 100}
	if err := out.WriteMessage(msg); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	if len(engine.writes) != 1 {
		t.Fatalf("engine saw %d writes, want 1", len(engine.writes))
	}
	if got := engine.writes[0]; got.word != 0x00643C90 || got.when != 0 {
		t.Fatalf("write = {when: %d, word: %#08x}", got.when, got.word)
	}

	if err := out.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if engine.aborts != 1 {
		t.Fatalf("engine saw %d aborts, want 1", engine.aborts)
	}

	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if engine.closes != 1 {
		t.Fatalf("engine saw %d closes, want 1", engine.closes)
	}
}

func TestPortReuseAfterClose(t *testing.T) {
	engine := newMockEngine(testDevices()...)
	r := newTestRegistry(t, engine)
	defer r.Close()

	device, _ := r.Device(3)
	out, err := r.OutputPort(device, 64)
	if err != nil {
		t.Fatalf("OutputPort: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := out.WriteMessage(contracts.Message{Status: contracts.NoteOn}); !errors.Is(err, contracts.ErrBadPointer) {
		t.Fatalf("WriteMessage after Close: %v, want %v", err, contracts.ErrBadPointer)
	}
	if err := out.Abort(); !errors.Is(err, contracts.ErrBadPointer) {
		t.Fatalf("Abort after Close: %v, want %v", err, contracts.ErrBadPointer)
	}
	if err := out.Close(); !errors.Is(err, contracts.ErrBadPointer) {
		t.Fatalf("second Close: %v, want %v", err, contracts.ErrBadPointer)
	}
	// No engine call happened for any of the rejected operations.
	if engine.closes != 1 || engine.aborts != 0 || len(engine.writes) != 0 {
		t.Fatalf("engine state after rejected calls: closes=%d aborts=%d writes=%d",
			engine.closes, engine.aborts, len(engine.writes))
	}

	in, err := r.InputPort(device, 64)
	if err != nil {
		t.Fatalf("InputPort: %v", err)
	}
	if err := in.Close(); err != nil {
		t.Fatalf("input Close: %v", err)
	}
	if _, err := in.Read(); !errors.Is(err, contracts.ErrBadPointer) {
		t.Fatalf("Read after Close: %v, want %v", err, contracts.ErrBadPointer)
	}
	if _, err := in.Poll(); !errors.Is(err, contracts.ErrBadPointer) {
		t.Fatalf("Poll after Close: %v, want %v", err, contracts.ErrBadPointer)
	}
}

func TestOutputTimestampsPassThrough(t *testing.T) {
	engine := newMockEngine(testDevices()...)
	r := newTestRegistry(t, engine)
	defer r.Close()

	device, _ := r.Device(2)
	out, err := r.OutputPortWithLatency(device, 64, 20)
	if err != nil {
		t.Fatalf("OutputPortWithLatency: %v", err)
	}
	if engine.opens[0].latency != 20 {
		t.Fatalf("latency = %d, want 20", engine.opens[0].latency)
	}

	// The port forwards timestamps unaltered, including out-of-order ones.
	events := []contracts.Event{
		{Message: contracts.Message{Status: contracts.NoteOn, Data1: 60, Data2: 100}, Timestamp: 10},
		{Message: contracts.Message{Status: contracts.NoteOff, Data1: 60}, Timestamp: 5},
	}
	for _, ev := range events {
		if err := out.Write(ev); err != nil {
			t.Fatalf("Write(%+v): %v", ev, err)
		}
	}
	if len(engine.writes) != 2 {
		t.Fatalf("engine saw %d writes, want 2", len(engine.writes))
	}
	if engine.writes[0].when != 10 || engine.writes[1].when != 5 {
		t.Fatalf("timestamps = [%d, %d], want [10, 5]", engine.writes[0].when, engine.writes[1].when)
	}
}

func TestWriteEventsBatch(t *testing.T) {
	engine := newMockEngine(testDevices()...)
	r := newTestRegistry(t, engine)
	defer r.Close()

	device, _ := r.Device(2)
	out, err := r.OutputPort(device, 64)
	if err != nil {
		t.Fatalf("OutputPort: %v", err)
	}

	events := []contracts.Event{
		{Message: contracts.Message{Status: 0x90, Data1: 60, Data2: 100}, Timestamp: 1},
		{Message: contracts.Message{Status: 0x80, Data1: 60, Data2: 0}, Timestamp: 2},
	}
	if err := out.WriteEvents(events); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	if len(engine.batches) != 1 {
		t.Fatalf("engine saw %d batches, want 1", len(engine.batches))
	}
	batch := engine.batches[0]
	if len(batch) != 2 || batch[0].Word != 0x00643C90 || batch[1].Word != 0x00003C80 {
		t.Fatalf("batch = %#v", batch)
	}
}

func TestWriteSysExChunking(t *testing.T) {
	engine := newMockEngine(testDevices()...)
	r := newTestRegistry(t, engine)
	defer r.Close()

	device, _ := r.Device(2)
	out, err := r.OutputPort(device, 64)
	if err != nil {
		t.Fatalf("OutputPort: %v", err)
	}

	data := []byte{0xF0, 0x41, 0x10, 0x42, 0x12, 0x40, 0xF7}
	if err := out.WriteSysEx(33, data); err != nil {
		t.Fatalf("WriteSysEx: %v", err)
	}
	if len(engine.batches) != 1 {
		t.Fatalf("engine saw %d batches, want 1", len(engine.batches))
	}
	batch := engine.batches[0]
	want := []uint32{0x424110F0, 0x00F74012}
	if len(batch) != len(want) {
		t.Fatalf("batch length = %d, want %d", len(batch), len(want))
	}
	for i, w := range want {
		if batch[i].Word != w {
			t.Fatalf("batch[%d].Word = %#08x, want %#08x", i, batch[i].Word, w)
		}
		if batch[i].Timestamp != 33 {
			t.Fatalf("batch[%d].Timestamp = %d, want 33", i, batch[i].Timestamp)
		}
	}
}

func TestInputRead(t *testing.T) {
	engine := newMockEngine(testDevices()...)
	r := newTestRegistry(t, engine)
	defer r.Close()

	device, _ := r.Device(0)
	in, err := r.InputPort(device, 64)
	if err != nil {
		t.Fatalf("InputPort: %v", err)
	}

	// An empty stream is not an error.
	ev, err := in.Read()
	if err != nil || ev != nil {
		t.Fatalf("empty Read = %+v, %v", ev, err)
	}

	engine.readResult = []contracts.PackedEvent{
		{Word: 0x00643C90, Timestamp: 42},
		{Word: 0x00003C80, Timestamp: 43},
	}
	ev, err = in.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := contracts.Event{
		Message:   contracts.Message{Status: 0x90, Data1: 60, Data2: 100},
		Timestamp: 42,
	}
	if ev == nil || *ev != want {
		t.Fatalf("Read = %+v, want %+v", ev, want)
	}

	events, err := in.ReadN(8)
	if err != nil {
		t.Fatalf("ReadN: %v", err)
	}
	if len(events) != 1 || events[0].Timestamp != 43 {
		t.Fatalf("ReadN = %+v", events)
	}

	if events, err := in.ReadN(0); err != nil || events != nil {
		t.Fatalf("ReadN(0) = %+v, %v", events, err)
	}
}

func TestInputReadOverflow(t *testing.T) {
	engine := newMockEngine(testDevices()...)
	r := newTestRegistry(t, engine)
	defer r.Close()

	device, _ := r.Device(0)
	in, err := r.InputPort(device, 64)
	if err != nil {
		t.Fatalf("InputPort: %v", err)
	}

	engine.readStatus = int(contracts.StatusBufferOverflow)
	if _, err := in.Read(); !errors.Is(err, contracts.ErrBufferOverflow) {
		t.Fatalf("Read during overflow: %v, want %v", err, contracts.ErrBufferOverflow)
	}
	// The overflow is reported exactly once; the stream then drains normally.
	engine.readResult = []contracts.PackedEvent{{Word: 0x00643C90}}
	if ev, err := in.Read(); err != nil || ev == nil {
		t.Fatalf("Read after overflow = %+v, %v", ev, err)
	}
}

func TestInputPoll(t *testing.T) {
	engine := newMockEngine(testDevices()...)
	r := newTestRegistry(t, engine)
	defer r.Close()

	device, _ := r.Device(0)
	in, err := r.InputPort(device, 64)
	if err != nil {
		t.Fatalf("InputPort: %v", err)
	}

	pending, err := in.Poll()
	if err != nil || pending {
		t.Fatalf("Poll on idle stream = %v, %v", pending, err)
	}

	engine.pollSt = contracts.StatusGotData
	pending, err = in.Poll()
	if err != nil || !pending {
		t.Fatalf("Poll with data = %v, %v", pending, err)
	}

	engine.pollSt = contracts.StatusBufferOverflow
	if _, err := in.Poll(); !errors.Is(err, contracts.ErrBufferOverflow) {
		t.Fatalf("Poll during overflow: %v, want %v", err, contracts.ErrBufferOverflow)
	}
}
