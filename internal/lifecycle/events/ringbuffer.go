package events

import (
	"sync"

	"caregate/pkg/platform/audit"
)

type slot struct {
	seq   uint64
	event audit.Event
}

// RingBuffer is a bounded FIFO of pending events. When full, the oldest
// event is overwritten. Every enqueued event gets a sequence number so a
// reader can remove exactly the event it peeked, even if overflow replaced
// the head in between.
type RingBuffer struct {
	mu       sync.Mutex
	slots    []slot
	head     int // next write position
	tail     int // next read position
	count    int
	capacity int
	next     uint64
	dropped  int64
}

func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1024
	}
	return &RingBuffer{
		slots:    make([]slot, capacity),
		capacity: capacity,
		next:     1,
	}
}

// Enqueue adds an event. Returns false when the oldest event was dropped to
// make room.
func (b *RingBuffer) Enqueue(event audit.Event) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := true
	if b.count >= b.capacity {
		b.removeHead()
		b.dropped++
		kept = false
	}
	b.slots[b.head] = slot{seq: b.next, event: event}
	b.next++
	b.head = (b.head + 1) % b.capacity
	b.count++
	return kept
}

// Peek returns the oldest event and its sequence number without removing it.
func (b *RingBuffer) Peek() (audit.Event, uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return audit.Event{}, 0, false
	}
	s := b.slots[b.tail]
	return s.event, s.seq, true
}

// Pop removes the oldest event if it is still the one identified by seq.
// Returns false when the buffer is empty or the head has moved on.
func (b *RingBuffer) Pop(seq uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 || b.slots[b.tail].seq != seq {
		return false
	}
	b.removeHead()
	return true
}

// Drop removes the event identified by seq and counts it as dropped. An
// event already lost to overflow is not counted twice.
func (b *RingBuffer) Drop(seq uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 || b.slots[b.tail].seq != seq {
		return false
	}
	b.removeHead()
	b.dropped++
	return true
}

func (b *RingBuffer) removeHead() {
	b.slots[b.tail] = slot{}
	b.tail = (b.tail + 1) % b.capacity
	b.count--
}

func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Dropped returns the total number of events lost to overflow or give-up.
func (b *RingBuffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
