package http

import (
	"github.com/indigo-web/hello/http/proto"
	"github.com/indigo-web/hello/kv"
)

type Headers = *kv.Storage

// Request is a parsed request head. Its strings may reference the parser's internal
// buffers, so it's valid only until the response to it is written.
type Request struct {
	// Method is the method token exactly as received.
	Method string
	// Path is the request-target exactly as received, not decoded.
	Path     string
	Protocol proto.Protocol
	// Headers are kept in arrival order, duplicates included.
	Headers Headers
}

func NewRequest(headers Headers) *Request {
	return &Request{
		Headers: headers,
	}
}

// Minor returns the HTTP minor version, 0 or 1.
func (r *Request) Minor() uint8 {
	return r.Protocol.Minor()
}

// Reset prepares the request for being filled by the next request head.
func (r *Request) Reset() {
	r.Method = ""
	r.Path = ""
	r.Protocol = proto.Unknown
	r.Headers.Clear()
}
