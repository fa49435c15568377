package http1

import (
	"errors"
	"fmt"
	"io"

	"github.com/indigo-web/hello/config"
	"github.com/indigo-web/hello/http"
	"github.com/indigo-web/hello/kv"
	"github.com/indigo-web/hello/transport"
	"github.com/indigo-web/utils/buffer"
	"github.com/rs/zerolog"
)

// Suit drives a single connection: it reads chunks, feeds them to the parser and answers
// every complete request head, until the peer goes away or sends garbage.
type Suit struct {
	*Parser
	*serializer
	request *http.Request
	client  transport.Client
	logger  zerolog.Logger
}

func New(
	cfg *config.Config,
	logger zerolog.Logger,
	request *http.Request,
	client transport.Client,
	requestLine, headers *buffer.Buffer,
	respBuff []byte,
) *Suit {
	return &Suit{
		Parser:     NewParser(cfg, request, requestLine, headers),
		serializer: newSerializer(client, respBuff),
		request:    request,
		client:     client,
		logger:     logger,
	}
}

// Initialize is the same constructor as just New, but consumes fewer arguments.
func Initialize(cfg *config.Config, logger zerolog.Logger, client transport.Client) *Suit {
	request := http.NewRequest(kv.NewPrealloc(cfg.Headers.Prealloc))
	requestLine, headers := Buffers(cfg)
	respBuff := make([]byte, 0, cfg.NET.ResponseBufferSize)

	return New(cfg, logger, request, client, requestLine, headers, respBuff)
}

// Serve processes requests until the connection must be closed. Closing it is up to the caller.
func (s *Suit) Serve() {
	for s.ServeOnce() {
	}
}

// ServeOnce processes a single chunk of data. Returns false if the connection must be closed.
func (s *Suit) ServeOnce() (ok bool) {
	data, err := s.client.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.logger.Warn().Err(err).Msg("read failed")
		}

		return false
	}

	if len(data) == 0 {
		// nothing new arrived, so there's no reason to bother the parser
		return true
	}

	state, extra, err := s.Parse(data)
	switch state {
	case Pending:
	case HeadersCompleted:
		s.client.Pushback(extra)
		s.logger.Debug().
			Str("method", s.request.Method).
			Str("path", s.request.Path).
			Uint8("minor", s.request.Minor()).
			Int("headers", s.request.Headers.Len()).
			Msg("request")

		if err = s.Write(http.Hello()); err != nil {
			s.logger.Warn().Err(err).Msg("write failed")
			return false
		}

		s.request.Reset()
	case Error:
		resp := http.Error(err)
		s.logger.Info().Err(err).Uint16("code", uint16(resp.Code)).Msg("rejecting malformed request")

		if werr := s.Write(resp); werr != nil {
			s.logger.Warn().Err(werr).Msg("write failed")
		}

		return false
	default:
		panic(fmt.Sprintf("BUG: got unexpected parser state: %d", state))
	}

	return true
}
