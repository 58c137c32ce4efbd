package producer

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestRingBufferFIFO(t *testing.T) {
	c := qt.New(t)

	ring := NewRingBuffer(4, false, 0)
	first := &Message{Topic: "a", Value: []byte("1")}
	c.Assert(ring.Enqueue(first), qt.IsNil)

	drained := ring.DrainUpTo(1)
	c.Assert(drained, qt.HasLen, 1)
	c.Assert(drained[0], qt.Equals, first)

	for i := 0; i < 4; i++ {
		c.Assert(ring.Enqueue(&Message{Topic: "a", Value: []byte{byte(i)}}), qt.IsNil)
	}
	drained = ring.DrainUpTo(10)
	c.Assert(drained, qt.HasLen, 4)
	for i, msg := range drained {
		c.Assert(msg.Value[0], qt.Equals, byte(i))
	}
	c.Assert(ring.Len(), qt.Equals, 0)
}

func TestRingBufferFullNonBlocking(t *testing.T) {
	c := qt.New(t)

	ring := NewRingBuffer(2, false, 0)
	c.Assert(ring.Enqueue(&Message{}), qt.IsNil)
	c.Assert(ring.Enqueue(&Message{}), qt.IsNil)
	c.Assert(ring.Enqueue(&Message{}), qt.Equals, ErrBufferFull)
}

func TestRingBufferBlockingTimesOut(t *testing.T) {
	c := qt.New(t)

	ring := NewRingBuffer(1, true, 20*time.Millisecond)
	c.Assert(ring.Enqueue(&Message{}), qt.IsNil)

	start := time.Now()
	err := ring.Enqueue(&Message{})
	c.Assert(err, qt.Equals, ErrBufferFull)
	c.Assert(time.Since(start) >= 20*time.Millisecond, qt.Equals, true)
}

func TestRingBufferBlockingReleasedByDrain(t *testing.T) {
	c := qt.New(t)

	ring := NewRingBuffer(1, true, time.Second)
	c.Assert(ring.Enqueue(&Message{Value: []byte("old")}), qt.IsNil)

	enqueued := make(chan error, 1)
	go func() {
		enqueued <- ring.Enqueue(&Message{Value: []byte("new")})
	}()

	// give the goroutine a chance to park on the backpressure wait
	time.Sleep(10 * time.Millisecond)
	drained := ring.DrainUpTo(1)
	c.Assert(drained, qt.HasLen, 1)

	select {
	case err := <-enqueued:
		c.Assert(err, qt.IsNil)
	case <-time.After(time.Second):
		c.Fatal("blocked producer was not released by the drain")
	}
	c.Assert(ring.Len(), qt.Equals, 1)
}

func TestRingBufferRequeueNeverBlocks(t *testing.T) {
	c := qt.New(t)

	ring := NewRingBuffer(1, true, time.Hour)
	c.Assert(ring.Requeue(&Message{}), qt.IsNil)
	c.Assert(ring.Requeue(&Message{}), qt.Equals, ErrBufferFull)
}
