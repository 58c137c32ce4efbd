package producer

import (
	"fmt"
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/atrniv/gregor/protocol"
)

// Config enumerates everything a producer instance is built with. Invalid
// configuration fails at construction, never mid-flight.
type Config struct {
	// APIVersion is the produce API version to speak, 0 through 8.
	APIVersion int16
	// TransactionalID is carried on the wire from version 3 onward; empty
	// means null.
	TransactionalID string
	// ClientID identifies this producer in request headers and broker logs.
	// Defaults to a uuid-suffixed "gregor" id.
	ClientID string
	// RequiredAcks must be 1 (leader ack) or -1 (full ISR ack). Acks 0 has
	// no response to reconcile and is not supported by this engine.
	RequiredAcks int16
	// RequestTimeout bounds both the broker-side produce timeout and the
	// transport round trip.
	RequestTimeout time.Duration

	// BatchNum and BatchSize are the flush thresholds; crossing either one
	// alone triggers a flush.
	BatchNum  int
	BatchSize int
	// FlushTime bounds the staleness of a buffered message: every interval
	// the scheduler flushes all non-empty buffers regardless of thresholds.
	FlushTime time.Duration

	// MaxBuffering is the ring buffer capacity.
	MaxBuffering int
	// WaitOnBufferFull selects the blocking backpressure policy; the wait
	// gives up after BufferWaitTimeout.
	WaitOnBufferFull  bool
	BufferWaitTimeout time.Duration

	// MaxRetry bounds resubmissions per message; RetryBackoff is the delay
	// before a retry pass.
	MaxRetry     int
	RetryBackoff time.Duration

	// Partitioner overrides the default key-hash/round-robin routing.
	Partitioner Partitioner

	Compression      protocol.CompressionCodec
	CompressionLevel int
}

func (c Config) withDefaults() Config {
	if c.ClientID == "" {
		c.ClientID = "gregor-" + uuid.NewV1().String()
	}
	if c.RequiredAcks == 0 {
		c.RequiredAcks = -1
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.BatchNum == 0 {
		c.BatchNum = 100
	}
	if c.BatchSize == 0 {
		c.BatchSize = 1 << 20
	}
	if c.FlushTime == 0 {
		c.FlushTime = 500 * time.Millisecond
	}
	if c.MaxBuffering == 0 {
		c.MaxBuffering = 1024
	}
	if c.BufferWaitTimeout == 0 {
		c.BufferWaitTimeout = time.Second
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = 100 * time.Millisecond
	}
	if c.Partitioner == nil {
		c.Partitioner = DefaultPartitioner
	}
	if c.CompressionLevel == 0 {
		c.CompressionLevel = protocol.CompressionLevelDefault
	}
	return c
}

func (c Config) validate() error {
	if _, err := protocol.FeaturesForVersion(c.APIVersion); err != nil {
		return err
	}
	if c.RequiredAcks != -1 && c.RequiredAcks != 1 {
		return fmt.Errorf("gregor: required acks must be 1 or -1, got %d", c.RequiredAcks)
	}
	if c.BatchNum < 1 {
		return fmt.Errorf("gregor: batch num must be positive, got %d", c.BatchNum)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("gregor: batch size must be positive, got %d", c.BatchSize)
	}
	if c.FlushTime <= 0 {
		return fmt.Errorf("gregor: flush time must be positive, got %s", c.FlushTime)
	}
	if c.MaxBuffering < 1 {
		return fmt.Errorf("gregor: max buffering must be positive, got %d", c.MaxBuffering)
	}
	if c.MaxRetry < 0 {
		return fmt.Errorf("gregor: max retry must not be negative, got %d", c.MaxRetry)
	}
	if c.TransactionalID != "" && c.APIVersion < 3 {
		return fmt.Errorf("gregor: transactional id requires produce API version 3 or later, got %d", c.APIVersion)
	}
	return nil
}
