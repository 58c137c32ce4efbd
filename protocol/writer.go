package protocol

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"unicode/utf8"
)

// Writer accumulates big-endian wire data for a single request frame. Like
// Reader it latches the first error; the final Data call surfaces it.
type Writer struct {
	err    error
	buffer *bytes.Buffer
}

func NewWriter() *Writer {
	return &Writer{
		buffer: bytes.NewBuffer([]byte{}),
	}
}

func (w *Writer) Boolean(value bool) {
	if w.err != nil {
		return
	}
	vb := int8(0)
	if value {
		vb = 1
	}
	_, err := w.buffer.Write([]byte{byte(vb)})
	if err != nil {
		w.err = err
	}
}

func (w *Writer) Int8(value int8) {
	if w.err != nil {
		return
	}
	_, err := w.buffer.Write([]byte{byte(value)})
	if err != nil {
		w.err = err
	}
}

func (w *Writer) Int16(value int16) {
	if w.err != nil {
		return
	}
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(value))
	_, err := w.buffer.Write(b)
	if err != nil {
		w.err = err
	}
}

func (w *Writer) Int32(value int32) {
	if w.err != nil {
		return
	}
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(value))
	_, err := w.buffer.Write(b)
	if err != nil {
		w.err = err
	}
}

func (w *Writer) Int64(value int64) {
	if w.err != nil {
		return
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(value))
	_, err := w.buffer.Write(b)
	if err != nil {
		w.err = err
	}
}

func (w *Writer) Uint32(value uint32) {
	if w.err != nil {
		return
	}
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, value)
	_, err := w.buffer.Write(b)
	if err != nil {
		w.err = err
	}
}

func (w *Writer) String(value string) {
	w.Int16(int16(len(value)))
	if w.err != nil {
		return
	}

	b := make([]byte, len(value))
	i := 0
	for _, r := range value {
		n := utf8.EncodeRune(b[i:], r)
		if n == 0 {
			w.err = NewProtocolException("invalid_rune", "Rune could not be encoded")
			return
		}
		i += n
	}

	_, err := w.buffer.Write(b)
	if err != nil {
		w.err = err
	}
}

func (w *Writer) NullableString(value NullableString) {
	if value.IsNull {
		w.Int16(-1)
		return
	}
	w.String(value.Value)
}

func (w *Writer) Bytes(value []byte) {
	w.Int32(int32(len(value)))
	if w.err != nil {
		return
	}

	n, err := w.buffer.Write(value)
	if err != nil {
		w.err = err
		return
	}

	if n != len(value) {
		w.err = NewProtocolException("invalid_binary_data", "Binary data could not be written")
	}
}

func (w *Writer) NullableBytes(value []byte) {
	if value == nil {
		w.Int32(int32(-1))
		return
	}
	w.Bytes(value)
}

func (w *Writer) RawBytes(value []byte) {
	if w.err != nil {
		return
	}
	n, err := w.buffer.Write(value)
	if err != nil {
		w.err = err
		return
	}
	if n != len(value) {
		w.err = NewProtocolException("invalid_binary_data", "Binary data could not be written")
	}
}

func (w *Writer) CRC32IEEE(data []byte) {
	w.Uint32(crc32.ChecksumIEEE(data))
}

// Data returns the accumulated frame without a length prefix; transport
// framing is applied separately when the request goes on the wire.
func (w *Writer) Data() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buffer.Bytes(), nil
}
