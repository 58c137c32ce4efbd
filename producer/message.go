package producer

import "time"

// Callback receives the terminal outcome of one asynchronously enqueued
// message. It runs on the producer's scheduler goroutine and must not block.
type Callback func(Result)

// Result is the outcome delivered for one message: a partition and offset on
// success, or the last observed error after retries are exhausted.
type Result struct {
	Topic     string
	Partition int32
	Offset    int64
	Err       error
	// Retries is how many times the message was resubmitted before the
	// terminal outcome.
	Retries int
}

// Message is one produce call in flight. It is immutable once enqueued; the
// ring buffer owns it until the scheduler claims it, after which exactly one
// send buffer holds it until its result is delivered.
type Message struct {
	Topic       string
	Key         []byte
	Value       []byte
	EnqueueTime time.Time

	callback Callback
	retries  int
}

// encodedSize is the message's on-wire footprint in a legacy message set:
// offset + size + crc + magic + attributes (+ timestamp for magic 1) plus
// key and value bytes. Send buffer byte accounting uses this.
func (m *Message) encodedSize(magic int8) int {
	size := 8 + 4 + 4 + 1 + 1
	if magic >= 1 {
		size += 8
	}
	return size + len(m.Key) + len(m.Value)
}

func (m *Message) deliver(result Result) {
	result.Topic = m.Topic
	result.Retries = m.retries
	if m.callback != nil {
		m.callback(result)
	}
}
