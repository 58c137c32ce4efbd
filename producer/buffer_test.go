package producer

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSendBufferFlushThresholds(t *testing.T) {
	c := qt.New(t)

	c.Run("count alone triggers", func(c *qt.C) {
		buf := NewSendBuffer("events", 0)
		defer buf.Release()
		for i := 0; i < 3; i++ {
			buf.Append(&Message{Value: []byte{0}}, 1)
			c.Assert(buf.ShouldFlush(3, 1<<20), qt.Equals, i == 2)
		}
	})

	c.Run("size alone triggers", func(c *qt.C) {
		buf := NewSendBuffer("events", 0)
		defer buf.Release()
		buf.Append(&Message{Value: make([]byte, 2048)}, 2048)
		c.Assert(buf.ShouldFlush(100, 1024), qt.Equals, true)
	})
}

func TestSendBufferSnapshotAndClear(t *testing.T) {
	c := qt.New(t)

	buf := NewSendBuffer("events", 3)
	defer buf.Release()

	first := &Message{Value: []byte("1")}
	second := &Message{Value: []byte("2")}
	buf.Append(first, 27)
	buf.Append(second, 27)
	c.Assert(buf.Len(), qt.Equals, 2)
	c.Assert(buf.Bytes(), qt.Equals, 54)
	c.Assert(buf.DirtySince().IsZero(), qt.Equals, false)

	snapshot := buf.SnapshotAndClear()
	c.Assert(snapshot, qt.DeepEquals, []*Message{first, second})
	c.Assert(buf.Len(), qt.Equals, 0)
	c.Assert(buf.Bytes(), qt.Equals, 0)
	c.Assert(buf.DirtySince().IsZero(), qt.Equals, true)
}

func TestSendBufferByteAccounting(t *testing.T) {
	c := qt.New(t)

	buf := NewSendBuffer("events", 0)
	defer buf.Release()

	messages := []*Message{
		{Key: []byte("k"), Value: []byte("hello")},
		{Value: []byte("world!")},
	}
	total := 0
	for _, msg := range messages {
		size := msg.encodedSize(1)
		buf.Append(msg, size)
		total += size
	}
	c.Assert(buf.Bytes(), qt.Equals, total)

	// magic 1 carries a timestamp the magic 0 layout lacks
	msg := &Message{Key: []byte("k"), Value: []byte("v")}
	c.Assert(msg.encodedSize(1)-msg.encodedSize(0), qt.Equals, 8)
}
