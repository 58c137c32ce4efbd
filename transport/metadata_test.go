package transport

import (
	"net"
	"strconv"
	"sync/atomic"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/atrniv/gregor/protocol"
)

// scriptedBroker answers metadata and api-versions exchanges with a fixed
// cluster view: itself as node 1, leading both partitions of "events", plus
// an errored topic that must be skipped.
type scriptedBroker struct {
	host       string
	port       int32
	maxProduce int64
}

func (b *scriptedBroker) handle(c *qt.C, request []byte) []byte {
	r := protocol.NewReader(request)
	apiKey := protocol.APIKeyEnum(r.Int16())
	apiVersion := r.Int16()
	corrID := r.Int32()
	r.NullableString() // client id
	c.Assert(r.Error(), qt.IsNil)

	w := protocol.NewWriter()
	w.Int32(corrID)
	switch apiKey {
	case protocol.APIKeyMetadata:
		c.Assert(apiVersion, qt.Equals, int16(1))
		w.Int32(1) // brokers
		w.Int32(1)
		w.String(b.host)
		w.Int32(b.port)
		w.NullableString(protocol.NullString()) // rack
		w.Int32(1)                              // controller id
		w.Int32(2)                              // topics
		w.Int16(0)
		w.String("events")
		w.Boolean(false)
		w.Int32(2) // partitions
		for partition := int32(0); partition < 2; partition++ {
			w.Int16(0)
			w.Int32(partition)
			w.Int32(1) // leader
			w.Int32(1) // replicas
			w.Int32(1)
			w.Int32(1) // isr
			w.Int32(1)
		}
		w.Int16(5) // LEADER_NOT_AVAILABLE, topic must be skipped
		w.String("broken")
		w.Boolean(false)
		w.Int32(0)
	case protocol.APIKeyApiVersions:
		c.Assert(apiVersion, qt.Equals, int16(0))
		w.Int16(0) // error code
		w.Int32(2)
		w.Int16(int16(protocol.APIKeyProduce))
		w.Int16(0)
		w.Int16(int16(atomic.LoadInt64(&b.maxProduce)))
		w.Int16(int16(protocol.APIKeyMetadata))
		w.Int16(0)
		w.Int16(9)
	default:
		c.Fatalf("unexpected api key %s", apiKey)
	}
	data, err := w.Data()
	c.Assert(err, qt.IsNil)
	return data
}

func startScriptedBroker(c *qt.C) (*scriptedBroker, string, func()) {
	broker := &scriptedBroker{maxProduce: 11}
	addr, stop := loopbackServer(c, func(request []byte) []byte {
		return broker.handle(c, request)
	})
	host, portStr, err := net.SplitHostPort(addr)
	c.Assert(err, qt.IsNil)
	port, err := strconv.Atoi(portStr)
	c.Assert(err, qt.IsNil)
	broker.host = host
	broker.port = int32(port)
	return broker, addr, stop
}

func TestMetadataClientClusterView(t *testing.T) {
	c := qt.New(t)

	_, addr, stop := startScriptedBroker(c)
	defer stop()

	client, err := NewMetadataClient(addr, "gregor-test")
	c.Assert(err, qt.IsNil)
	defer client.Close()

	count, err := client.PartitionCount("events")
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, int32(2))

	// errored topics are absent from the view, not reported as empty
	_, err = client.PartitionCount("broken")
	c.Assert(err, qt.ErrorMatches, `.*no metadata for topic "broken"`)
	_, err = client.PartitionCount("missing")
	c.Assert(err, qt.IsNotNil)

	leader0, err := client.LeaderFor("events", 0)
	c.Assert(err, qt.IsNil)
	leader1, err := client.LeaderFor("events", 1)
	c.Assert(err, qt.IsNil)
	// both partitions lead to the same node, so the connection is shared
	c.Assert(leader0, qt.Equals, leader1)

	_, err = client.LeaderFor("events", 7)
	c.Assert(err, qt.ErrorMatches, `.*no leader for events/7`)
}

func TestMetadataClientNegotiateProduceVersion(t *testing.T) {
	c := qt.New(t)

	broker, addr, stop := startScriptedBroker(c)
	defer stop()

	client, err := NewMetadataClient(addr, "gregor-test")
	c.Assert(err, qt.IsNil)
	defer client.Close()

	// the broker advertises more than this client speaks; the result clamps
	version, err := client.NegotiateProduceVersion()
	c.Assert(err, qt.IsNil)
	c.Assert(version, qt.Equals, protocol.ProduceMaxVersion)

	atomic.StoreInt64(&broker.maxProduce, 5)
	version, err = client.NegotiateProduceVersion()
	c.Assert(err, qt.IsNil)
	c.Assert(version, qt.Equals, int16(5))
}
