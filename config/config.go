package config

import (
	"errors"
	"time"

	json "github.com/json-iterator/go"
)

type (
	URIRequestLineSize struct {
		Default, Maximal int
	}

	HeadersSpace struct {
		Default, Maximal int
	}
)

type (
	URI struct {
		// RequestLineSize limits the buffer storing method, path and protocol while they
		// are split among multiple reads.
		RequestLineSize URIRequestLineSize
	}

	Headers struct {
		// MaxNumber is the maximal number of header lines a single request may carry. A request
		// exceeding it is rejected, never truncated.
		MaxNumber int
		// Prealloc is the initial capacity of the request headers storage.
		Prealloc int
		// Space limits the amount of memory occupied by header keys and values.
		Space HeadersSpace
	}

	NET struct {
		// ReadBufferSize is the size of a single chunk read from the socket.
		ReadBufferSize int
		// ReadTimeout limits how long a connection may stay silent. Zero disables it.
		ReadTimeout time.Duration `test:"nullable"`
		// WriteTimeout limits a single response write. Zero disables it.
		WriteTimeout time.Duration `test:"nullable"`
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop.
		AcceptLoopInterruptPeriod time.Duration
		// ResponseBufferSize is the initial capacity of the buffer the response is rendered into.
		ResponseBufferSize int
	}
)

// Config holds limits and pre-allocations used across the server.
//
// Always start from Default() and modify it, as zero values aren't valid limits.
type Config struct {
	URI     URI
	Headers Headers
	NET     NET
}

// Default returns default config.
func Default() *Config {
	return &Config{
		URI: URI{
			RequestLineSize: URIRequestLineSize{
				Default: 512,
				Maximal: 8 * 1024,
			},
		},
		Headers: Headers{
			MaxNumber: 32,
			Prealloc:  10,
			Space: HeadersSpace{
				Default: 1024,
				Maximal: 16 * 1024,
			},
		},
		NET: NET{
			ReadBufferSize:            1024,
			AcceptLoopInterruptPeriod: 5 * time.Second,
			ResponseBufferSize:        256,
		},
	}
}

// FromJSON decodes the data over the defaults, so only overridden fields must be presented.
// Durations are expected in nanoseconds.
func FromJSON(data []byte) (*Config, error) {
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var (
	ErrBadReadBufferSize = errors.New("config: NET.ReadBufferSize must be positive")
	ErrBadHeadersNumber  = errors.New("config: Headers.MaxNumber must be positive")
	ErrBadLimits         = errors.New("config: maximal limits must not be lower than defaults")
)

// Validate reports the first limit which can't be used as is.
func (c *Config) Validate() error {
	switch {
	case c.NET.ReadBufferSize <= 0:
		return ErrBadReadBufferSize
	case c.Headers.MaxNumber <= 0:
		return ErrBadHeadersNumber
	case c.URI.RequestLineSize.Maximal < c.URI.RequestLineSize.Default,
		c.Headers.Space.Maximal < c.Headers.Space.Default:
		return ErrBadLimits
	}

	return nil
}
