package dummy

import (
	"io"
	"net"

	"github.com/indigo-web/hello/transport"
)

var _ transport.Client = new(Client)

// Client returns the chunks it was initialised with one by one, and io.EOF after they're
// exhausted, unless set to loop reads. It also tracks all the written data, making it thereby
// a universal mock suitable for most of the tests.
type Client struct {
	closed     bool
	loop       bool
	journaling bool
	pointer    int
	tmp        []byte
	written    []byte
	data       [][]byte
	writeErr   error
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{
		data:       data,
		journaling: true,
	}
}

func (c *Client) Read() (data []byte, err error) {
	if c.closed {
		return nil, io.EOF
	}

	if len(c.tmp) > 0 {
		data, c.tmp = c.tmp, nil

		return data, nil
	}

	if c.pointer >= len(c.data) {
		if !c.loop || len(c.data) == 0 {
			return nil, io.EOF
		}

		c.pointer = 0
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Pushback(takeback []byte) {
	c.tmp = takeback
}

func (c *Client) Write(p []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}

	if c.journaling {
		c.written = append(c.written, p...)
	}

	return len(p), nil
}

func (c *Client) Conn() net.Conn {
	return new(Conn).Nop()
}

func (*Client) Remote() net.Addr {
	return nil
}

func (c *Client) Close() error {
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *Client) Closed() bool {
	return c.closed
}

// LoopReads makes the client start over after the last chunk instead of returning io.EOF.
func (c *Client) LoopReads() *Client {
	c.loop = true
	return c
}

// FailWrites makes every write fail with the error.
func (c *Client) FailWrites(err error) *Client {
	c.writeErr = err
	return c
}

func (c *Client) Journaling(flag bool) *Client {
	c.journaling = flag
	return c
}

func (c *Client) Written() string {
	if !c.journaling {
		panic("mock client: cannot access written data: journaling is disabled!")
	}

	return string(c.written)
}
