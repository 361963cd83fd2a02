package midistream

import (
	"sync"

	"github.com/lhpt2/portmidi/sdk/contracts"
)

// DefaultQueueSize is used when a stream is opened with buffer size zero.
const DefaultQueueSize = 256

// Queue is the bounded input event buffer behind an open input stream.
// Producers (engine callbacks or reader goroutines) push packed events;
// the client thread drains them through Read and Poll.
//
// There is no flow control back to the data source, so on overflow the
// whole buffer is flushed and the loss is reported to the consumer as
// StatusBufferOverflow exactly once; ordinary processing resumes with the
// next pushed event.
type Queue struct {
	mu         sync.Mutex
	events     []contracts.PackedEvent
	capacity   int
	overflowed bool
}

// NewQueue returns a queue holding up to capacity events. A capacity of
// zero or less selects DefaultQueueSize.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueSize
	}
	return &Queue{capacity: capacity}
}

// Push appends an event. It reports whether the queue overflowed, in which
// case the buffer was flushed and the event dropped; the caller should
// reset its parser so a partial sysex is not resumed mid-message.
func (q *Queue) Push(ev contracts.PackedEvent) (overflowed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) >= q.capacity {
		q.events = q.events[:0]
		q.overflowed = true
		return true
	}
	q.events = append(q.events, ev)
	return false
}

// Read fills buf with pending events and returns the count, or the
// negative StatusBufferOverflow value if an overflow is pending. The
// overflow is cleared by reporting it.
func (q *Queue) Read(buf []contracts.PackedEvent) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.overflowed {
		q.overflowed = false
		return int(contracts.StatusBufferOverflow)
	}
	n := copy(buf, q.events)
	q.events = q.events[:copy(q.events, q.events[n:])]
	return n
}

// Poll reports StatusGotData when events are buffered, the pending
// overflow status if one is waiting to be surfaced, and StatusNoError
// otherwise. It consumes nothing.
func (q *Queue) Poll() contracts.Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.overflowed {
		return contracts.StatusBufferOverflow
	}
	if len(q.events) > 0 {
		return contracts.StatusGotData
	}
	return contracts.StatusNoError
}

// Len returns the number of buffered events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
