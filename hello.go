package hello

import (
	"fmt"
	"net"
	"os"

	"github.com/indigo-web/hello/config"
	"github.com/indigo-web/hello/internal/protocol/http1"
	"github.com/indigo-web/hello/transport"
	"github.com/rs/zerolog"
)

// DefaultAddr is used by the binary when no address is passed.
const DefaultAddr = "127.0.0.1:8080"

// App is a server answering every well-formed request with a plain "hello". Malformed
// requests are answered with 400 Bad Request, after which the connection is closed.
type App struct {
	addr       string
	cfg        *config.Config
	logger     zerolog.Logger
	hooks      hooks
	supervisor transport.Supervisor
}

// New returns a new App instance. The address is resolved only when Serve is called.
func New(addr string) *App {
	return &App{
		addr:       addr,
		cfg:        config.Default(),
		logger:     defaultLogger(),
		supervisor: transport.NewSupervisor(),
	}
}

// Tune replaces the default config.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// Logger replaces the default logger, which writes human-readable lines into stderr.
// Every request is logged at debug level.
func (a *App) Logger(logger zerolog.Logger) *App {
	a.logger = logger
	return a
}

// NotifyOnStart calls the callback at the moment, when the listener is bound. Connections
// are accepted right after it returns.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment, when the server is down. It's guaranteed,
// that at the moment as the callback is called, the server isn't able to accept any new
// connections and all the clients are already disconnected.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Serve binds the address and serves connections until Stop is called or the listener
// fails. The call is blocking.
func (a *App) Serve() error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("hello: %w", err)
	}

	err := a.supervisor.Add(a.addr, transport.NewTCP(), a.newTCPCallback())
	if err != nil {
		return fmt.Errorf("hello: bind %s: %w", a.addr, err)
	}

	a.logger.Info().Stringer("addr", a.Addrs()[0]).Msg("listening")
	callIfNotNil(a.hooks.OnStart)
	err = a.supervisor.Run(a.cfg.NET)
	callIfNotNil(a.hooks.OnStop)

	if err != nil {
		return fmt.Errorf("hello: listen: %w", err)
	}

	return nil
}

// Stop stops accepting new connections and waits until every connected client is gone.
// Connections aren't interrupted, so idle clients hold Stop unless NET.ReadTimeout is set.
func (a *App) Stop() {
	a.supervisor.Stop()
}

// Addrs returns addresses the server is actually bound to. Valid only after the start
// notification.
func (a *App) Addrs() []net.Addr {
	return a.supervisor.Addrs()
}

func (a *App) newTCPCallback() func(net.Conn) {
	return func(conn net.Conn) {
		client := transport.NewClient(
			conn,
			a.cfg.NET.ReadTimeout,
			a.cfg.NET.WriteTimeout,
			make([]byte, a.cfg.NET.ReadBufferSize),
		)
		logger := a.logger.With().Stringer("remote", conn.RemoteAddr()).Logger()
		http1.Initialize(a.cfg, logger, client).Serve()
	}
}

func defaultLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
