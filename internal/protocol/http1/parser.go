package http1

import (
	"bytes"

	"github.com/indigo-web/hello/config"
	"github.com/indigo-web/hello/http"
	"github.com/indigo-web/hello/http/proto"
	"github.com/indigo-web/hello/http/status"
	"github.com/indigo-web/utils/buffer"
	"github.com/indigo-web/utils/uf"
)

type parserState uint8

const (
	eMethod parserState = iota + 1
	ePath
	eProtocol
	eHeaderKey
	eHeaderValue
	eHeaderValueCRLFCR
)

// Parser is a stream-based request head parser. It's fed with chunks exactly as they're read
// from the connection and keeps its position among calls, so nothing is ever scanned twice.
// Values are accumulated in the parser's own buffers, which makes it safe to feed it with
// a reused read buffer. When the head is over, Parse returns HeadersCompleted along with
// the rest of the chunk, which is never inspected and belongs to the next request (or a body).
//
// Parsed strings reference the parser's buffers and are valid until the next head is parsed.
type Parser struct {
	state         parserState
	request       *http.Request
	requestLine   *buffer.Buffer
	headers       *buffer.Buffer
	headersNumber int
	maxHeaders    int
	key           string
}

func NewParser(cfg *config.Config, request *http.Request, requestLine, headers *buffer.Buffer) *Parser {
	return &Parser{
		state:       eMethod,
		request:     request,
		requestLine: requestLine,
		headers:     headers,
		maxHeaders:  cfg.Headers.MaxNumber,
	}
}

// Buffers allocates buffers for the parser according to the limits.
func Buffers(cfg *config.Config) (requestLine, headers *buffer.Buffer) {
	return buffer.New(cfg.URI.RequestLineSize.Default, cfg.URI.RequestLineSize.Maximal),
		buffer.New(cfg.Headers.Space.Default, cfg.Headers.Space.Maximal)
}

func (p *Parser) Parse(data []byte) (state RequestState, extra []byte, err error) {
	request := p.request
	requestLine := p.requestLine
	headers := p.headers

	switch p.state {
	case eMethod:
		goto method
	case ePath:
		goto path
	case eProtocol:
		goto protocol
	case eHeaderKey:
		goto headerKey
	case eHeaderValue:
		goto headerValue
	case eHeaderValueCRLFCR:
		goto headerValueCRLFCR
	default:
		panic("BUG: unreachable parser state")
	}

method:
	for i, char := range data {
		if char == ' ' {
			if !requestLine.Append(data[:i]) {
				return p.fail(status.ErrTooLongRequestLine)
			}

			methodValue := requestLine.Finish()
			if len(methodValue) == 0 {
				return p.fail(status.ErrBadMethod)
			}

			request.Method = uf.B2S(methodValue)
			data = data[i+1:]
			goto path
		}

		if !isTChar(char) {
			return p.fail(status.ErrBadMethod)
		}
	}

	if !requestLine.Append(data) {
		return p.fail(status.ErrTooLongRequestLine)
	}

	p.state = eMethod
	return Pending, nil, nil

path:
	for i, char := range data {
		if char == ' ' {
			if !requestLine.Append(data[:i]) {
				return p.fail(status.ErrTooLongRequestLine)
			}

			pathValue := requestLine.Finish()
			if len(pathValue) == 0 {
				return p.fail(status.ErrBadPath)
			}

			request.Path = uf.B2S(pathValue)
			data = data[i+1:]
			goto protocol
		}

		if isProhibitedPathChar(char) {
			return p.fail(status.ErrBadPath)
		}
	}

	if !requestLine.Append(data) {
		return p.fail(status.ErrTooLongRequestLine)
	}

	p.state = ePath
	return Pending, nil, nil

protocol:
	{
		lf := bytes.IndexByte(data, '\n')
		if lf == -1 {
			if !requestLine.Append(data) {
				return p.fail(status.ErrTooLongRequestLine)
			}

			p.state = eProtocol
			return Pending, nil, nil
		}

		if !requestLine.Append(data[:lf]) {
			return p.fail(status.ErrTooLongRequestLine)
		}

		request.Protocol = proto.FromBytes(stripCR(requestLine.Finish()))
		if request.Protocol == proto.Unknown {
			return p.fail(status.ErrUnsupportedProtocol)
		}

		data = data[lf+1:]
		// fallthrough to headerKey
	}

headerKey:
	if len(data) == 0 {
		p.state = eHeaderKey
		return Pending, nil, nil
	}

	if headers.SegmentLength() == 0 {
		// we're at the very beginning of the line, so it might be the end of the head
		switch data[0] {
		case '\n':
			return p.complete(data[1:])
		case '\r':
			data = data[1:]
			goto headerValueCRLFCR
		}
	}

	for i, char := range data {
		if char == ':' {
			if !headers.Append(data[:i]) {
				return p.fail(status.ErrHeaderFieldsTooLarge)
			}

			key := headers.Finish()
			if len(key) == 0 {
				return p.fail(status.ErrBadHeaderName)
			}

			if p.headersNumber++; p.headersNumber > p.maxHeaders {
				return p.fail(status.ErrTooManyHeaders)
			}

			p.key = uf.B2S(key)
			data = data[i+1:]
			goto headerValue
		}

		if char == '\n' || char == '\r' {
			return p.fail(status.ErrBadHeader)
		}

		if !isTChar(char) {
			return p.fail(status.ErrBadHeaderName)
		}
	}

	if !headers.Append(data) {
		return p.fail(status.ErrHeaderFieldsTooLarge)
	}

	p.state = eHeaderKey
	return Pending, nil, nil

headerValue:
	{
		lf := bytes.IndexByte(data, '\n')
		if lf == -1 {
			if !headers.Append(data) {
				return p.fail(status.ErrHeaderFieldsTooLarge)
			}

			p.state = eHeaderValue
			return Pending, nil, nil
		}

		if !headers.Append(data[:lf]) {
			return p.fail(status.ErrHeaderFieldsTooLarge)
		}

		value := trimSpaces(stripCR(headers.Finish()))
		if !isValidValue(value) {
			return p.fail(status.ErrBadHeaderValue)
		}

		request.Headers.Add(p.key, uf.B2S(value))
		data = data[lf+1:]
		goto headerKey
	}

headerValueCRLFCR:
	if len(data) == 0 {
		p.state = eHeaderValueCRLFCR
		return Pending, nil, nil
	}

	if data[0] != '\n' {
		return p.fail(status.ErrBadHeader)
	}

	return p.complete(data[1:])
}

func (p *Parser) complete(extra []byte) (RequestState, []byte, error) {
	p.reset()
	return HeadersCompleted, extra, nil
}

func (p *Parser) fail(err error) (RequestState, []byte, error) {
	p.reset()
	return Error, nil, err
}

// reset brings the parser to the initial state. The buffers are cleared, yet their content
// stays intact until overwritten by the next head, so the parsed request remains valid.
func (p *Parser) reset() {
	p.state = eMethod
	p.headersNumber = 0
	p.key = ""
	p.requestLine.Clear()
	p.headers.Clear()
}

func stripCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}

	return b
}

func trimSpaces(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}

	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}

	return b
}

// isValidValue rejects control characters except horizontal tab. Obsolete text (bytes above
// 0x7f) is allowed.
func isValidValue(value []byte) bool {
	for _, char := range value {
		if (char < 0x20 && char != '\t') || char == 0x7f {
			return false
		}
	}

	return true
}

func isProhibitedPathChar(c byte) bool {
	return c <= 0x20 || c >= 0x7f
}

// tchar as defined in RFC 9110, 5.6.2.
var tchars = func() (lut [256]bool) {
	for c := '0'; c <= '9'; c++ {
		lut[c] = true
	}

	for c := 'a'; c <= 'z'; c++ {
		lut[c] = true
		lut[c-'a'+'A'] = true
	}

	for _, c := range "!#$%&'*+-.^_`|~" {
		lut[c] = true
	}

	return lut
}()

func isTChar(c byte) bool {
	return tchars[c]
}
