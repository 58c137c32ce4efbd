package transport

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atrniv/gregor/producer"
	"github.com/atrniv/gregor/protocol"
)

// metadata requests stay on v1: every field the client needs exists there
// and nothing flexible is involved
const metadataAPIVersion int16 = 1

type partitionLeaders map[int32]int32

// MetadataClient maintains the cluster view the producer engine needs: how
// many partitions a topic has and which broker leads each one. The view is
// refreshed on demand, never in the background; the engine calls Refresh
// when it suspects staleness.
type MetadataClient struct {
	clientID       string
	dialTimeout    time.Duration
	requestTimeout time.Duration
	correlation    protocol.Correlation

	mu      sync.RWMutex
	seed    *Conn
	addrs   map[int32]string
	conns   map[int32]*Conn
	leaders map[string]partitionLeaders
}

// NewMetadataClient dials the bootstrap address and loads the initial
// cluster view.
func NewMetadataClient(bootstrap string, clientID string) (*MetadataClient, error) {
	m := &MetadataClient{
		clientID:       clientID,
		dialTimeout:    10 * time.Second,
		requestTimeout: 10 * time.Second,
		addrs:          map[int32]string{},
		conns:          map[int32]*Conn{},
		leaders:        map[string]partitionLeaders{},
	}
	seed, err := Dial(bootstrap, m.dialTimeout)
	if err != nil {
		return nil, err
	}
	m.seed = seed
	if err := m.Refresh(); err != nil {
		seed.Close()
		return nil, err
	}
	return m, nil
}

func (m *MetadataClient) header(key protocol.APIKeyEnum, apiVersion int16) protocol.RequestHeader {
	return protocol.RequestHeader{
		APIKey:        key,
		APIVersion:    apiVersion,
		CorrelationID: m.correlation.Next(),
		ClientID:      protocol.NewNullableString(m.clientID),
	}
}

// Refresh replaces the cached cluster view with a fresh all-topics
// metadata exchange against the seed broker.
func (m *MetadataClient) Refresh() error {
	w := protocol.NewWriter()
	req := protocol.MetadataRequest{AllTopicsMetadata: true}
	header := m.header(protocol.APIKeyMetadata, metadataAPIVersion)
	if err := req.Write(metadataAPIVersion, header, w); err != nil {
		return err
	}
	data, err := w.Data()
	if err != nil {
		return err
	}

	response, err := m.seed.SendReceive(data, m.requestTimeout)
	if err != nil {
		return err
	}

	r := protocol.NewReader(response)
	resHeader := protocol.ReadResponseHeader(r)
	if resHeader.CorrelationID != header.CorrelationID {
		return protocol.NewProtocolException("correlation_mismatch", "Expected correlation id %d but received %d", header.CorrelationID, resHeader.CorrelationID)
	}
	res, err := protocol.ReadMetadataResponse(metadataAPIVersion, r)
	if err != nil {
		return err
	}

	addrs := map[int32]string{}
	for _, broker := range res.Brokers {
		addrs[broker.NodeID] = fmt.Sprintf("%s:%d", broker.Host, broker.Port)
	}
	leaders := map[string]partitionLeaders{}
	for _, topic := range res.Topics {
		if topic.ErrorCode != 0 {
			continue
		}
		partitions := partitionLeaders{}
		for _, partition := range topic.Partitions {
			if partition.ErrorCode != 0 {
				continue
			}
			partitions[partition.PartitionIndex] = partition.LeaderID
		}
		leaders[topic.Name] = partitions
	}

	m.mu.Lock()
	m.addrs = addrs
	m.leaders = leaders
	m.mu.Unlock()

	log.Debug().
		Int("brokers", len(addrs)).
		Int("topics", len(leaders)).
		Msg("Cluster metadata refreshed")
	return nil
}

func (m *MetadataClient) PartitionCount(topic string) (int32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	partitions, ok := m.leaders[topic]
	if !ok {
		return 0, fmt.Errorf("gregor: no metadata for topic %q", topic)
	}
	return int32(len(partitions)), nil
}

// LeaderFor resolves the partition leader's connection, dialing it on first
// use. The cached view may be stale; the engine refreshes and retries on
// failure.
func (m *MetadataClient) LeaderFor(topic string, partition int32) (producer.Broker, error) {
	m.mu.RLock()
	partitions, ok := m.leaders[topic]
	if !ok {
		m.mu.RUnlock()
		return nil, fmt.Errorf("gregor: no metadata for topic %q", topic)
	}
	node, ok := partitions[partition]
	if !ok {
		m.mu.RUnlock()
		return nil, fmt.Errorf("gregor: no leader for %s/%d", topic, partition)
	}
	if conn, ok := m.conns[node]; ok {
		m.mu.RUnlock()
		return conn, nil
	}
	addr, ok := m.addrs[node]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("gregor: no address for broker %d", node)
	}

	conn, err := Dial(addr, m.dialTimeout)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	if existing, ok := m.conns[node]; ok {
		m.mu.Unlock()
		conn.Close()
		return existing, nil
	}
	m.conns[node] = conn
	m.mu.Unlock()
	return conn, nil
}

// NegotiateProduceVersion asks the seed broker which produce versions it
// speaks and returns the highest one this client supports too.
func (m *MetadataClient) NegotiateProduceVersion() (int16, error) {
	w := protocol.NewWriter()
	header := m.header(protocol.APIKeyApiVersions, 0)
	if err := (protocol.APIVersionsRequest{}).Write(header, w); err != nil {
		return -1, err
	}
	data, err := w.Data()
	if err != nil {
		return -1, err
	}

	response, err := m.seed.SendReceive(data, m.requestTimeout)
	if err != nil {
		return -1, err
	}

	r := protocol.NewReader(response)
	resHeader := protocol.ReadResponseHeader(r)
	if resHeader.CorrelationID != header.CorrelationID {
		return -1, protocol.NewProtocolException("correlation_mismatch", "Expected correlation id %d but received %d", header.CorrelationID, resHeader.CorrelationID)
	}
	res, err := protocol.ReadAPIVersionsResponse(0, r)
	if err != nil {
		return -1, err
	}
	if err := producer.ExceptionForCode(res.ErrorCode); err != nil {
		return -1, err
	}

	max := res.MaxVersionFor(protocol.APIKeyProduce)
	if max < protocol.ProduceMinVersion {
		return -1, producer.ErrUnsupportedVersion
	}
	if max > protocol.ProduceMaxVersion {
		max = protocol.ProduceMaxVersion
	}
	return max, nil
}

func (m *MetadataClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for node, conn := range m.conns {
		conn.Close()
		delete(m.conns, node)
	}
	return m.seed.Close()
}
