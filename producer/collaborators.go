package producer

import "time"

// Broker is the connection collaborator: one opaque request/response
// exchange with a single broker. Socket management, TLS and authentication
// live behind it. A timeout expiry must surface as an error, which this
// engine classifies as a retryable network failure.
type Broker interface {
	SendReceive(request []byte, timeout time.Duration) ([]byte, error)
}

// Metadata is the cluster-view collaborator. Staleness is handled by
// calling Refresh and retrying; the engine never caches leaders itself.
type Metadata interface {
	LeaderFor(topic string, partition int32) (Broker, error)
	PartitionCount(topic string) (int32, error)
	Refresh() error
}
