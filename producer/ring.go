package producer

import (
	"sync"
	"time"
)

// RingBuffer is the bounded ingress queue feeding one producer instance.
// Callers append at the tail, the flush scheduler drains from the head.
// Backpressure is a countable token channel: the drainer deposits one token
// per freed slot, so no wakeup is lost and no more blocked callers are
// released than slots were freed.
type RingBuffer struct {
	mu    sync.Mutex
	slots []*Message
	head  int
	count int

	block       bool
	waitTimeout time.Duration
	space       chan struct{}
}

func NewRingBuffer(capacity int, block bool, waitTimeout time.Duration) *RingBuffer {
	return &RingBuffer{
		slots:       make([]*Message, capacity),
		block:       block,
		waitTimeout: waitTimeout,
		space:       make(chan struct{}, capacity),
	}
}

// Enqueue appends a message in O(1). On a full buffer it either fails
// immediately or, under the blocking policy, waits for a freed-slot token
// until the configured timeout, then fails with ErrBufferFull.
func (b *RingBuffer) Enqueue(m *Message) error {
	if b.tryEnqueue(m) {
		return nil
	}
	if !b.block {
		return ErrBufferFull
	}

	timer := time.NewTimer(b.waitTimeout)
	defer timer.Stop()
	for {
		select {
		case <-b.space:
			// a token is a hint, not a reservation; another caller may have
			// taken the slot first
			if b.tryEnqueue(m) {
				return nil
			}
		case <-timer.C:
			return ErrBufferFull
		}
	}
}

// Requeue is the scheduler's retry path. The scheduler must never suspend
// on its own buffer, so this never blocks regardless of policy.
func (b *RingBuffer) Requeue(m *Message) error {
	if b.tryEnqueue(m) {
		return nil
	}
	return ErrBufferFull
}

func (b *RingBuffer) tryEnqueue(m *Message) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == len(b.slots) {
		return false
	}
	b.slots[(b.head+b.count)%len(b.slots)] = m
	b.count++
	return true
}

// DrainUpTo removes and returns up to n of the oldest messages in FIFO
// order, then deposits one backpressure token per freed slot.
func (b *RingBuffer) DrainUpTo(n int) []*Message {
	b.mu.Lock()
	if n > b.count {
		n = b.count
	}
	if n <= 0 {
		b.mu.Unlock()
		return nil
	}
	drained := make([]*Message, 0, n)
	for i := 0; i < n; i++ {
		drained = append(drained, b.slots[b.head])
		b.slots[b.head] = nil
		b.head = (b.head + 1) % len(b.slots)
		b.count--
	}
	b.mu.Unlock()

	for range drained {
		select {
		case b.space <- struct{}{}:
		default:
		}
	}
	return drained
}

func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *RingBuffer) Cap() int {
	return len(b.slots)
}
