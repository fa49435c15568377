package transport

import (
	"io"
	"net"
	"time"

	"github.com/indigo-web/hello/internal/timer"
)

// Client wraps a single connection. It reads in bounded chunks and is able to preserve
// unconsumed bytes for the next read.
type Client interface {
	// Read returns either data preserved via Pushback, or the next chunk from the connection.
	Read() ([]byte, error)
	// Pushback preserves the data for the next Read.
	Pushback([]byte)
	// Write writes the whole data or fails.
	Write([]byte) (int, error)
	Conn() net.Conn
	Remote() net.Addr
	Close() error
}

type client struct {
	conn         net.Conn
	buff         []byte
	pending      []byte
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewClient(conn net.Conn, readTimeout, writeTimeout time.Duration, buff []byte) Client {
	return &client{
		buff:         buff,
		conn:         conn,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Read reads data into the internal buffer and returns a piece of it back. The returned
// slice is valid until the next call.
func (c *client) Read() ([]byte, error) {
	if len(c.pending) > 0 {
		pending := c.pending
		c.pending = nil

		return pending, nil
	}

	if c.readTimeout > 0 {
		if err := c.conn.SetReadDeadline(timer.Deadline(c.readTimeout)); err != nil {
			return nil, err
		}
	}

	n, err := c.conn.Read(c.buff)
	return c.buff[:n], err
}

// Pushback preserves a chunk of data from previous read for the next read.
func (c *client) Pushback(b []byte) {
	c.pending = b
}

// Conn unwraps the underlying net.Conn.
func (c *client) Conn() net.Conn {
	return c.conn
}

// Write loops until every byte is accepted by the connection. A write accepting nothing
// without reporting an error is considered io.ErrShortWrite.
func (c *client) Write(b []byte) (written int, err error) {
	if c.writeTimeout > 0 {
		if err = c.conn.SetWriteDeadline(timer.Deadline(c.writeTimeout)); err != nil {
			return 0, err
		}
	}

	return WriteAll(c.conn, b)
}

// Remote returns the remote address of the connection.
func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection.
func (c *client) Close() error {
	return c.conn.Close()
}

// WriteAll writes the whole b into w. Partial writes are retried, and a partial write
// without an error fails with io.ErrShortWrite.
func WriteAll(w io.Writer, b []byte) (written int, err error) {
	for written < len(b) {
		n, err := w.Write(b[written:])
		written += n

		switch {
		case err != nil:
			return written, err
		case n == 0:
			return written, io.ErrShortWrite
		}
	}

	return written, nil
}
