package producer

import (
	"math"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestDefaultPartitionerKeyedDeterminism(t *testing.T) {
	c := qt.New(t)

	key := []byte("order-7781")
	first := DefaultPartitioner(key, 12, 0)
	for counter := int32(1); counter < 100; counter++ {
		c.Assert(DefaultPartitioner(key, 12, counter), qt.Equals, first)
	}
	c.Assert(first >= 0 && first < 12, qt.Equals, true)
}

func TestDefaultPartitionerKeylessCoverage(t *testing.T) {
	c := qt.New(t)

	const partitions = int32(7)
	seen := map[int32]bool{}
	for counter := int32(0); counter < partitions; counter++ {
		seen[DefaultPartitioner(nil, partitions, counter)] = true
	}
	// an incrementing counter visits every partition within one lap
	c.Assert(seen, qt.HasLen, int(partitions))
}

func TestDefaultPartitionerKeylessCounterWrap(t *testing.T) {
	c := qt.New(t)

	const partitions = int32(7)
	// once the atomic counter wraps past MaxInt32 it goes negative; routing
	// must stay in range instead of failing the message
	for _, counter := range []int32{math.MaxInt32, math.MinInt32, -1, -partitions} {
		chosen := DefaultPartitioner(nil, partitions, counter)
		c.Assert(chosen >= 0 && chosen < partitions, qt.Equals, true)
	}
}
