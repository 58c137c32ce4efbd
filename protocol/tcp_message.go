package protocol

import (
	"encoding/binary"
	"io"
)

// TCPMessage is one size-prefixed protocol frame. The prefix is stripped on
// read and applied on write, so request and response payloads carry no
// framing of their own.
type TCPMessage []byte

func NewTCPMessage(src io.Reader) (TCPMessage, error) {
	b := make([]byte, 4)
	if _, err := io.ReadFull(src, b); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(b)

	m := make([]byte, size)
	if _, err := io.ReadFull(src, m); err != nil {
		return nil, err
	}
	return TCPMessage(m), nil
}

func (m TCPMessage) Write(w io.Writer) error {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(len(m)))
	_, err := w.Write(b)
	if err != nil {
		return err
	}
	_, err = w.Write(m)
	if err != nil {
		return err
	}
	return nil
}
