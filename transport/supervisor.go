package transport

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/indigo-web/hello/config"
)

// Supervisor runs a set of bound transports and brings all of them down as soon as one
// fails or Stop is called.
type Supervisor struct {
	stopped *atomic.Bool
	ts      []boundTransport
	stopch  chan struct{}
	done    chan struct{}
	once    *sync.Once
}

func NewSupervisor() Supervisor {
	return Supervisor{
		stopped: new(atomic.Bool),
		stopch:  make(chan struct{}),
		done:    make(chan struct{}),
		once:    new(sync.Once),
	}
}

// Add binds the transport. In case of failure, all the previously added transports are closed.
func (s *Supervisor) Add(addr string, transport Transport, cb func(net.Conn)) error {
	err := transport.Bind(addr)
	if err != nil {
		s.close()
		s.stopped.Store(true)
		s.finish()
		return err
	}

	s.ts = append(s.ts, boundTransport{
		cb: cb,
		t:  transport,
	})

	return nil
}

// Addrs returns the addresses of all the bound transports in order they were added.
func (s *Supervisor) Addrs() []net.Addr {
	addrs := make([]net.Addr, len(s.ts))
	for i, t := range s.ts {
		addrs[i] = t.t.Addr()
	}

	return addrs
}

// Run listens on all the transports and blocks until one of them returns or Stop is called.
func (s *Supervisor) Run(cfg config.NET) error {
	defer s.finish()

	if len(s.ts) == 0 {
		return nil
	}

	errch := make(chan error)

	for _, t := range s.ts {
		go func(t boundTransport) {
			errch <- t.t.Listen(cfg, t.cb)
		}(t)
	}

	select {
	case err := <-errch:
		s.stop()
		drain(errch, len(s.ts)-1)

		return err
	case <-s.stopch:
		s.stop()
		drain(errch, len(s.ts))
		s.stopch <- struct{}{}

		return nil
	}
}

// Stop stops all the transports and waits until every connection is served. If Run
// isn't started yet, Stop blocks until it is. After Run returned, Stop is a no-op.
func (s *Supervisor) Stop() {
	if s.stopped.Load() {
		return
	}

	select {
	case s.stopch <- struct{}{}:
		<-s.stopch
	case <-s.done:
	}
}

func (s *Supervisor) stop() {
	if s.stopped.Swap(true) {
		return
	}

	for _, t := range s.ts {
		t.t.Stop()
		// closing the listener interrupts the pending Accept immediately
		t.t.Close()
	}

	for _, t := range s.ts {
		t.t.Wait()
	}
}

func (s *Supervisor) finish() {
	s.once.Do(func() {
		close(s.done)
	})
}

func (s *Supervisor) close() {
	for _, t := range s.ts {
		t.t.Close()
	}
}

type boundTransport struct {
	cb func(conn net.Conn)
	t  Transport
}

func drain(ch <-chan error, n int) {
	for range n {
		<-ch
	}
}
