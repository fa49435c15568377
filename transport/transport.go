package transport

import (
	"net"

	"github.com/indigo-web/hello/config"
)

// Transport accepts connections and passes each of them to the callback in its own goroutine.
type Transport interface {
	Bind(addr string) error
	Addr() net.Addr
	Listen(cfg config.NET, cb func(conn net.Conn)) error
	Stop()
	Close()
	Wait()
}
