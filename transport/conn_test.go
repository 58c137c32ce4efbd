package transport

import (
	"bufio"
	"bytes"
	"net"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/atrniv/gregor/protocol"
)

// loopbackServer answers every frame it reads with handle(request), each
// exchange on its own accepted connection's read loop.
func loopbackServer(c *qt.C, handle func(request []byte) []byte) (addr string, stop func()) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				reader := bufio.NewReader(conn)
				for {
					request, err := protocol.NewTCPMessage(reader)
					if err != nil {
						return
					}
					if err := protocol.TCPMessage(handle(request)).Write(conn); err != nil {
						return
					}
				}
			}(conn)
		}
	}()
	return listener.Addr().String(), func() { listener.Close() }
}

func TestConnSendReceive(t *testing.T) {
	c := qt.New(t)

	addr, stop := loopbackServer(c, func(request []byte) []byte {
		return append([]byte("echo:"), request...)
	})
	defer stop()

	conn, err := Dial(addr, time.Second)
	c.Assert(err, qt.IsNil)
	defer conn.Close()
	c.Assert(conn.Addr(), qt.Equals, addr)

	response, err := conn.SendReceive([]byte("ping"), time.Second)
	c.Assert(err, qt.IsNil)
	c.Assert(response, qt.DeepEquals, []byte("echo:ping"))

	// frames keep their boundaries across sequential exchanges
	response, err = conn.SendReceive(bytes.Repeat([]byte{0xAB}, 4096), time.Second)
	c.Assert(err, qt.IsNil)
	c.Assert(len(response), qt.Equals, 5+4096)
}

func TestConnSendReceiveTimeout(t *testing.T) {
	c := qt.New(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)
	defer listener.Close()
	go func() {
		// accept and never answer
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(time.Second)
	}()

	conn, err := Dial(listener.Addr().String(), time.Second)
	c.Assert(err, qt.IsNil)
	defer conn.Close()

	_, err = conn.SendReceive([]byte("ping"), 20*time.Millisecond)
	c.Assert(err, qt.IsNotNil)
	netErr, ok := err.(net.Error)
	c.Assert(ok, qt.Equals, true)
	c.Assert(netErr.Timeout(), qt.Equals, true)
}

func TestDialFailure(t *testing.T) {
	c := qt.New(t)

	// a listener closed before dialing guarantees a refused port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)
	addr := listener.Addr().String()
	listener.Close()

	_, err = Dial(addr, 100*time.Millisecond)
	c.Assert(err, qt.IsNotNil)
}
