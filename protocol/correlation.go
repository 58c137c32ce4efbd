package protocol

import (
	"math"
	"sync/atomic"
)

// Correlation hands out request correlation ids. Ids must stay unique across
// every request in flight at any instant, so the increment is atomic even
// though the rest of the producer runs on a single scheduler goroutine.
type Correlation struct {
	counter int32
}

// Next returns the next correlation id. Ids increase monotonically and wrap
// within the signed 31-bit range the wire field allows.
func (c *Correlation) Next() int32 {
	return atomic.AddInt32(&c.counter, 1) & math.MaxInt32
}

// Current returns the most recently issued id without consuming one.
func (c *Correlation) Current() int32 {
	return atomic.LoadInt32(&c.counter) & math.MaxInt32
}
