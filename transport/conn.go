package transport

import (
	"bufio"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atrniv/gregor/protocol"
)

// Conn is one client connection to a broker. Requests and responses travel
// as size-prefixed frames; the mutex serializes exchanges so frames from
// concurrent callers never interleave on the socket.
type Conn struct {
	addr   string
	conn   net.Conn
	buffer *bufio.Reader
	mu     sync.Mutex
}

func Dial(addr string, timeout time.Duration) (*Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("addr", addr).Msg("Connected to broker")
	return &Conn{
		addr:   addr,
		conn:   conn,
		buffer: bufio.NewReader(conn),
	}, nil
}

// SendReceive performs one request/response exchange. The timeout covers
// the full round trip; on expiry the socket deadline fires and the error is
// returned as-is, for the caller to classify as a retryable network
// failure.
func (c *Conn) SendReceive(request []byte, timeout time.Duration) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	if err := protocol.TCPMessage(request).Write(c.conn); err != nil {
		return nil, err
	}
	message, err := protocol.NewTCPMessage(c.buffer)
	if err != nil {
		return nil, err
	}
	return message, nil
}

func (c *Conn) Addr() string {
	return c.addr
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
