package producer

import (
	"hash/crc32"
	"math"
)

// Partitioner chooses a destination partition for a message. The counter is
// an auto-incrementing value the producer supplies for keyless messages;
// implementations must return a value in [0, numPartitions).
type Partitioner func(key []byte, numPartitions int32, counter int32) int32

// DefaultPartitioner routes keyed messages by CRC32 of the key, so a fixed
// key always lands on the same partition for a fixed partition count, and
// spreads keyless messages round-robin via the supplied counter.
func DefaultPartitioner(key []byte, numPartitions int32, counter int32) int32 {
	if len(key) > 0 {
		return int32(crc32.ChecksumIEEE(key) % uint32(numPartitions))
	}
	// the counter wraps negative past MaxInt32; mask before the modulo
	return (counter & math.MaxInt32) % numPartitions
}
