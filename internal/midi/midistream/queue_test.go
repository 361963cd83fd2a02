package midistream

import (
	"testing"

	"github.com/lhpt2/portmidi/sdk/contracts"
)

func TestQueuePushRead(t *testing.T) {
	q := NewQueue(8)
	for i := 0; i < 3; i++ {
		if q.Push(contracts.PackedEvent{Word: uint32(i), Timestamp: contracts.Timestamp(i)}) {
			t.Fatalf("push %d reported overflow", i)
		}
	}
	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}

	buf := make([]contracts.PackedEvent, 2)
	if n := q.Read(buf); n != 2 {
		t.Fatalf("Read = %d, want 2", n)
	}
	if buf[0].Word != 0 || buf[1].Word != 1 {
		t.Fatalf("events out of order: %#v", buf)
	}
	if n := q.Read(buf); n != 1 {
		t.Fatalf("second Read = %d, want 1", n)
	}
	if buf[0].Word != 2 {
		t.Fatalf("remaining event word = %d, want 2", buf[0].Word)
	}
	if n := q.Read(buf); n != 0 {
		t.Fatalf("empty Read = %d, want 0", n)
	}
}

func TestQueuePoll(t *testing.T) {
	q := NewQueue(4)
	if st := q.Poll(); st != contracts.StatusNoError {
		t.Fatalf("empty Poll = %v", st)
	}
	q.Push(contracts.PackedEvent{Word: 1})
	if st := q.Poll(); st != contracts.StatusGotData {
		t.Fatalf("Poll with data = %v", st)
	}
}

func TestQueueOverflowReportedOnce(t *testing.T) {
	q := NewQueue(2)
	q.Push(contracts.PackedEvent{Word: 1})
	q.Push(contracts.PackedEvent{Word: 2})
	if !q.Push(contracts.PackedEvent{Word: 3}) {
		t.Fatal("push beyond capacity did not report overflow")
	}
	// The buffer was flushed, losing the buffered events and the new one.
	if q.Len() != 0 {
		t.Fatalf("Len() after overflow = %d, want 0", q.Len())
	}
	if st := q.Poll(); st != contracts.StatusBufferOverflow {
		t.Fatalf("Poll after overflow = %v", st)
	}

	// Events arriving after the flush buffer normally.
	q.Push(contracts.PackedEvent{Word: 4})

	buf := make([]contracts.PackedEvent, 4)
	if n := q.Read(buf); n != int(contracts.StatusBufferOverflow) {
		t.Fatalf("first Read after overflow = %d, want %d", n, int(contracts.StatusBufferOverflow))
	}
	// Exactly once: the next read proceeds normally.
	if n := q.Read(buf); n != 1 || buf[0].Word != 4 {
		t.Fatalf("Read after overflow report = %d %#v", n, buf[0])
	}
}

func TestQueueDefaultCapacity(t *testing.T) {
	q := NewQueue(0)
	for i := 0; i < DefaultQueueSize; i++ {
		if q.Push(contracts.PackedEvent{Word: uint32(i)}) {
			t.Fatalf("overflow at %d, before default capacity", i)
		}
	}
	if !q.Push(contracts.PackedEvent{}) {
		t.Fatal("expected overflow past default capacity")
	}
}
