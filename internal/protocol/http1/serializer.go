package http1

import (
	"strconv"

	"github.com/indigo-web/hello/http"
	"github.com/indigo-web/hello/http/status"
	"github.com/indigo-web/hello/transport"
)

const crlf = "\r\n"

// Render appends the response in its wire form to buf. Content-Length and Content-Type are
// always rendered first, followed by extra headers in their order. Code and reason phrase
// are passed through verbatim.
func Render(buf []byte, resp *http.Response) []byte {
	buf = append(buf, "HTTP/1.1 "...)
	buf = append(buf, status.StringCode(resp.Code)...)
	buf = append(buf, ' ')
	buf = append(buf, string(resp.Reason())...)
	buf = append(buf, crlf...)

	buf = append(buf, "Content-Length: "...)
	buf = strconv.AppendInt(buf, int64(len(resp.Body)), 10)
	buf = append(buf, crlf...)
	buf = append(buf, "Content-Type: "+http.ContentType+crlf...)

	for _, header := range resp.Headers {
		buf = append(buf, header.Key...)
		buf = append(buf, ": "...)
		buf = append(buf, header.Value...)
		buf = append(buf, crlf...)
	}

	buf = append(buf, crlf...)

	return append(buf, resp.Body...)
}

// serializer renders responses into a reused buffer and flushes them at once.
type serializer struct {
	client transport.Client
	buff   []byte
}

func newSerializer(client transport.Client, buff []byte) *serializer {
	return &serializer{
		client: client,
		buff:   buff,
	}
}

// Write renders the response and writes it fully, otherwise fails.
func (s *serializer) Write(resp *http.Response) error {
	s.buff = Render(s.buff[:0], resp)
	_, err := s.client.Write(s.buff)

	return err
}
