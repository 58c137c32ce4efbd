package protocol

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestReaderWriterRoundTrip(t *testing.T) {
	c := qt.New(t)

	w := NewWriter()
	w.Boolean(true)
	w.Int8(-8)
	w.Int16(-16)
	w.Int32(-32)
	w.Int64(-64)
	w.Uint32(0xDEADBEEF)
	w.String("hello")
	w.NullableString(NullString())
	w.NullableString(NewNullableString("there"))
	w.Bytes([]byte{1, 2, 3})
	w.NullableBytes(nil)
	data, err := w.Data()
	c.Assert(err, qt.IsNil)

	r := NewReader(data)
	c.Assert(r.Boolean(), qt.Equals, true)
	c.Assert(r.Int8(), qt.Equals, int8(-8))
	c.Assert(r.Int16(), qt.Equals, int16(-16))
	c.Assert(r.Int32(), qt.Equals, int32(-32))
	c.Assert(r.Int64(), qt.Equals, int64(-64))
	c.Assert(r.Uint32(), qt.Equals, uint32(0xDEADBEEF))
	c.Assert(r.String(), qt.Equals, "hello")
	c.Assert(r.NullableString().IsNull, qt.Equals, true)
	c.Assert(r.NullableString().Value, qt.Equals, "there")
	c.Assert(r.Bytes(), qt.DeepEquals, []byte{1, 2, 3})
	c.Assert(r.NullableBytes(), qt.IsNil)
	c.Assert(r.Error(), qt.IsNil)
	c.Assert(r.Remaining(), qt.Equals, 0)
}

func TestReaderLatchesFirstError(t *testing.T) {
	c := qt.New(t)

	r := NewReader([]byte{0x00, 0x01})
	r.Int32() // two bytes short
	c.Assert(r.Error(), qt.ErrorMatches, `\[message_eof\].*`)

	// subsequent reads after the latch return zero values, and the first
	// error sticks
	c.Assert(r.Int64(), qt.Equals, int64(0))
	c.Assert(r.String(), qt.Equals, "")
	c.Assert(r.Error(), qt.ErrorMatches, `\[message_eof\].*`)
}

func TestReaderReportsUnconsumedBytes(t *testing.T) {
	c := qt.New(t)

	r := NewReader([]byte{0x00, 0x01, 0x02})
	c.Assert(r.Int16(), qt.Equals, int16(1))
	c.Assert(r.Error(), qt.ErrorMatches, `\[message_not_finished\].*`)
}

func TestReaderTruncatedString(t *testing.T) {
	c := qt.New(t)

	w := NewWriter()
	w.String("hello")
	data, err := w.Data()
	c.Assert(err, qt.IsNil)

	r := NewReader(data[:4])
	_ = r.String()
	c.Assert(r.Error(), qt.ErrorMatches, `\[message_eof\].*`)
}
