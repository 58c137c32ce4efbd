package protocol

import (
	"bytes"
	"compress/gzip"
	"io/ioutil"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestNewMessageSetPlain(t *testing.T) {
	c := qt.New(t)

	set, err := NewMessageSet([]RecordEntry{
		{Timestamp: 1, Key: []byte("a"), Value: []byte("1")},
		{Timestamp: 2, Key: []byte("b"), Value: []byte("2")},
	}, 1, CompressionNone, CompressionLevelDefault)
	c.Assert(err, qt.IsNil)
	c.Assert(set, qt.HasLen, 2)
	c.Assert(set[0].Offset, qt.Equals, int64(0))
	c.Assert(set[1].Offset, qt.Equals, int64(1))
	c.Assert(set[1].Message.Attributes.CompressionCodec(), qt.Equals, CompressionNone)
}

func TestNewMessageSetCompressed(t *testing.T) {
	c := qt.New(t)

	entries := []RecordEntry{
		{Timestamp: 1, Key: []byte("a"), Value: []byte("1")},
		{Timestamp: 2, Key: []byte("b"), Value: []byte("2")},
	}
	set, err := NewMessageSet(entries, 1, CompressionGZIP, CompressionLevelDefault)
	c.Assert(err, qt.IsNil)

	// the whole set collapses into one wrapper message carrying the encoded
	// inner set as its value
	c.Assert(set, qt.HasLen, 1)
	wrapper := set[0].Message
	c.Assert(wrapper.Attributes.CompressionCodec(), qt.Equals, CompressionGZIP)
	c.Assert(wrapper.Key, qt.IsNil)
	c.Assert(set[0].Offset, qt.Equals, int64(1))

	w := NewWriter()
	set.Write(1, w)
	data, err := w.Data()
	c.Assert(err, qt.IsNil)

	// unwrap by hand: offset, size, crc, magic, attributes, timestamp, null
	// key, then the gzipped inner set
	r := NewReader(data)
	r.Int64()
	r.Int32()
	r.Uint32()
	c.Assert(r.Int8(), qt.Equals, int8(1))
	c.Assert(MessageAttributes(r.Int8()).CompressionCodec(), qt.Equals, CompressionGZIP)
	r.Int64()
	c.Assert(r.NullableBytes(), qt.IsNil)
	compressed := r.NullableBytes()
	c.Assert(r.Error(), qt.IsNil)

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	c.Assert(err, qt.IsNil)
	inner, err := ioutil.ReadAll(gz)
	c.Assert(err, qt.IsNil)

	plain := NewWriter()
	innerSet, err := NewMessageSet(entries, 1, CompressionNone, CompressionLevelDefault)
	c.Assert(err, qt.IsNil)
	innerSet.Write(1, plain)
	plainData, err := plain.Data()
	c.Assert(err, qt.IsNil)
	c.Assert(inner, qt.DeepEquals, plainData)
}
