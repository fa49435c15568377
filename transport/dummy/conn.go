package dummy

import (
	"io"
	"net"
	"time"
)

var _ net.Conn = new(Conn)

// Conn is an in-memory net.Conn. Every Read returns the next of the chunks it was initialised
// with, and io.EOF after they're exhausted. Writes are journaled, optionally accepting at most
// WriteLimit bytes per call.
type Conn struct {
	Data       []byte
	WriteLimit int
	WriteErr   error
	chunks     [][]byte
	nop        bool
}

func NewConn(chunks ...[]byte) *Conn {
	return &Conn{chunks: chunks}
}

func (c *Conn) Read(b []byte) (n int, err error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}

	n = copy(b, c.chunks[0])
	if n < len(c.chunks[0]) {
		c.chunks[0] = c.chunks[0][n:]
	} else {
		c.chunks = c.chunks[1:]
	}

	return n, nil
}

func (c *Conn) Write(b []byte) (n int, err error) {
	if c.WriteErr != nil {
		return 0, c.WriteErr
	}

	if c.WriteLimit > 0 && len(b) > c.WriteLimit {
		b = b[:c.WriteLimit]
	}

	if !c.nop {
		c.Data = append(c.Data, b...)
	}

	return len(b), nil
}

func (c *Conn) Close() error {
	return nil
}

func (c *Conn) LocalAddr() net.Addr {
	return nil
}

func (c *Conn) RemoteAddr() net.Addr {
	return nil
}

func (c *Conn) SetDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetReadDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	return nil
}

// Nop disables journaling of written data.
func (c *Conn) Nop() *Conn {
	c.nop = true
	return c
}
