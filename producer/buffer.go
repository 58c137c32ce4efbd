package producer

import (
	"sync"
	"time"
)

// SendBuffer accumulates messages bound for one topic-partition between
// flushes. The byte counter always equals the summed encoded size of the
// messages currently held, and a flush takes everything or nothing.
type SendBuffer struct {
	Topic     string
	Partition int32

	messages   []*Message
	bytes      int
	dirtySince time.Time
}

// buffers cycle through a pool to keep allocation churn down across flush
// cycles; the append/snapshot contract is unaffected
var sendBufferPool = sync.Pool{
	New: func() interface{} {
		return &SendBuffer{}
	},
}

func NewSendBuffer(topic string, partition int32) *SendBuffer {
	b := sendBufferPool.Get().(*SendBuffer)
	b.Topic = topic
	b.Partition = partition
	return b
}

// Release returns an empty buffer to the pool. Releasing a non-empty buffer
// would drop messages, so it is a no-op.
func (b *SendBuffer) Release() {
	if len(b.messages) > 0 {
		return
	}
	b.Topic = ""
	b.Partition = 0
	b.messages = nil
	b.bytes = 0
	b.dirtySince = time.Time{}
	sendBufferPool.Put(b)
}

func (b *SendBuffer) Append(m *Message, encodedSize int) {
	if len(b.messages) == 0 {
		b.dirtySince = time.Now()
	}
	b.messages = append(b.messages, m)
	b.bytes += encodedSize
}

// ShouldFlush is true once either threshold is crossed; count and byte size
// each suffice on their own.
func (b *SendBuffer) ShouldFlush(batchNum int, batchSize int) bool {
	return len(b.messages) >= batchNum || b.bytes >= batchSize
}

// SnapshotAndClear hands the buffered messages over for encoding and resets
// the buffer in one step, so the codec never sees a partial batch.
func (b *SendBuffer) SnapshotAndClear() []*Message {
	messages := b.messages
	b.messages = nil
	b.bytes = 0
	b.dirtySince = time.Time{}
	return messages
}

func (b *SendBuffer) Len() int {
	return len(b.messages)
}

func (b *SendBuffer) Bytes() int {
	return b.bytes
}

func (b *SendBuffer) DirtySince() time.Time {
	return b.dirtySince
}
