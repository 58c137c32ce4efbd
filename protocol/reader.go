package protocol

import (
	"encoding/binary"
	"unicode/utf8"
)

// Reader decodes big-endian wire data from a single response frame. The
// first error latches and every later call becomes a no-op, so decode
// sequences can be written straight-line and checked once at the end.
type Reader struct {
	pos  int
	err  error
	data []byte
}

func NewReader(data []byte) *Reader {
	return &Reader{
		pos:  0,
		data: data,
		err:  nil,
	}
}

// Error reports the latched decode error. A fully decoded response must
// consume its entire frame: leftover bytes desynchronize every later read
// on a reused connection, so they are reported as an error here too.
func (r *Reader) Error() error {
	if r.err == nil {
		if r.pos < len(r.data) {
			return NewProtocolException("message_not_finished", "Message has %d bytes left to be read", len(r.data)-r.pos)
		}
	}
	return r.err
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

func (r *Reader) Boolean() bool {
	if r.err != nil {
		return false
	}
	if r.pos >= len(r.data) {
		r.err = NewProtocolException("message_eof", "No more data available to be read")
		return false
	}
	v8 := int8(r.data[r.pos])
	r.pos++
	return v8 > 0
}

func (r *Reader) Int8() int8 {
	if r.err != nil {
		return 0
	}
	if r.pos >= len(r.data) {
		r.err = NewProtocolException("message_eof", "No more data available to be read")
		return 0
	}
	v8 := int8(r.data[r.pos])
	r.pos++
	return v8
}

func (r *Reader) Int16() int16 {
	if r.err != nil {
		return 0
	}
	if r.pos+2 > len(r.data) {
		r.err = NewProtocolException("message_eof", "No more data available to be read")
		return 0
	}
	uv16 := binary.BigEndian.Uint16(r.data[r.pos : r.pos+2])
	r.pos += 2
	return int16(uv16)
}

func (r *Reader) Int32() int32 {
	if r.err != nil {
		return 0
	}
	if r.pos+4 > len(r.data) {
		r.err = NewProtocolException("message_eof", "No more data available to be read")
		return 0
	}
	uv32 := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return int32(uv32)
}

func (r *Reader) Int64() int64 {
	if r.err != nil {
		return 0
	}
	if r.pos+8 > len(r.data) {
		r.err = NewProtocolException("message_eof", "No more data available to be read")
		return 0
	}
	uv64 := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return int64(uv64)
}

func (r *Reader) Uint32() uint32 {
	if r.err != nil {
		return 0
	}
	if r.pos+4 > len(r.data) {
		r.err = NewProtocolException("message_eof", "No more data available to be read")
		return 0
	}
	uv32 := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return uv32
}

func (r *Reader) RawBytes(length int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+length > len(r.data) {
		r.err = NewProtocolException("message_eof", "No more data available to be read")
		return nil
	}
	data := r.data[r.pos : r.pos+length]
	r.pos += length
	return data
}

// ArrayLength reads an int32 array count. A negative count latches
// invalid_size, so a corrupt response can never drive a negative make.
func (r *Reader) ArrayLength() int {
	l := r.Int32()
	if r.err != nil {
		return 0
	}
	if l < 0 {
		r.err = NewProtocolException("invalid_size", "Invalid size provided for this field")
		return 0
	}
	return int(l)
}

func (r *Reader) String() string {
	l := r.Int16()
	if r.err != nil {
		return ""
	}

	if l < 0 {
		r.err = NewProtocolException("invalid_size", "Invalid size provided for this field")
		return ""
	}

	sr := []rune{}
	for l > 0 {
		if r.pos >= len(r.data) {
			r.err = NewProtocolException("message_eof", "No more data available to be read")
			return ""
		}
		rn, n := utf8.DecodeRune(r.data[r.pos:])
		sr = append(sr, rn)
		l -= int16(n)
		r.pos += n
	}
	return string(sr)
}

func (r *Reader) NullableString() NullableString {
	l := r.Int16()
	if r.err != nil {
		return EmptyNullableString
	}

	if l == -1 {
		return NullableString{IsValid: true, IsNull: true}
	} else if l < 0 {
		r.err = NewProtocolException("invalid_size", "Invalid size provided for this field")
		return EmptyNullableString
	}

	sr := []rune{}
	for l > 0 {
		if r.pos >= len(r.data) {
			r.err = NewProtocolException("message_eof", "No more data available to be read")
			return EmptyNullableString
		}
		rn, n := utf8.DecodeRune(r.data[r.pos:])
		sr = append(sr, rn)
		l -= int16(n)
		r.pos += n
	}
	return NullableString{IsValid: true, IsNull: false, Value: string(sr)}
}

func (r *Reader) Bytes() []byte {
	l := r.Int32()
	if r.err != nil {
		return nil
	}
	if l < 0 {
		r.err = NewProtocolException("invalid_size", "Invalid size provided for this field")
		return nil
	}
	return r.RawBytes(int(l))
}

func (r *Reader) NullableBytes() []byte {
	l := r.Int32()
	if r.err != nil {
		return nil
	}
	if l == -1 {
		return nil
	} else if l < 0 {
		r.err = NewProtocolException("invalid_size", "Invalid size provided for this field")
		return nil
	}
	return r.RawBytes(int(l))
}
