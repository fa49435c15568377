package http

import (
	"github.com/indigo-web/hello/http/status"
	"github.com/indigo-web/hello/kv"
)

// ContentType is always presented in the response headers.
const ContentType = "text/plain"

// Response is an outgoing response. Content-Length and Content-Type are never stored in
// Headers, as they're always synthesized from the Body during serialization. Extra headers
// follow them.
type Response struct {
	Code status.Code
	// Status is a reason phrase. If empty, the standard one for the Code is used.
	Status  status.Status
	Headers []kv.Pair
	Body    []byte
}

func NewResponse(code status.Code, reason status.Status, body []byte, headers ...kv.Pair) *Response {
	return &Response{
		Code:    code,
		Status:  reason,
		Headers: headers,
		Body:    body,
	}
}

var helloBody = []byte("hello")

// Hello is the response to every valid request.
func Hello() *Response {
	return NewResponse(status.OK, "OK", helloBody)
}

// Error builds a response describing the error. The error message becomes the body.
func Error(err error) *Response {
	code := status.CodeOf(err)
	return NewResponse(code, status.Text(code), []byte(err.Error()))
}

// Header appends an extra header.
func (r *Response) Header(key, value string) *Response {
	r.Headers = append(r.Headers, kv.Pair{Key: key, Value: value})
	return r
}

// String sets the body.
func (r *Response) String(body string) *Response {
	r.Body = []byte(body)
	return r
}

// Bytes sets the body without copying it.
func (r *Response) Bytes(body []byte) *Response {
	r.Body = body
	return r
}

// Reason returns the reason phrase to be sent.
func (r *Response) Reason() status.Status {
	if len(r.Status) == 0 {
		return status.Text(r.Code)
	}

	return r.Status
}
