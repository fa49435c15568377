package status

type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

// Request head rejections. All of them are answered with 400 Bad Request, the message
// goes to the response body as is.
var (
	ErrBadRequest           = NewError(BadRequest, "bad request")
	ErrBadMethod            = NewError(BadRequest, "invalid method token")
	ErrBadPath              = NewError(BadRequest, "invalid request path")
	ErrUnsupportedProtocol  = NewError(BadRequest, "unsupported protocol version")
	ErrBadHeader            = NewError(BadRequest, "invalid header line")
	ErrBadHeaderName        = NewError(BadRequest, "invalid header name")
	ErrBadHeaderValue       = NewError(BadRequest, "invalid header value")
	ErrTooManyHeaders       = NewError(BadRequest, "too many headers")
	ErrTooLongRequestLine   = NewError(BadRequest, "request line is too long")
	ErrHeaderFieldsTooLarge = NewError(BadRequest, "too large headers section")
)

// CodeOf extracts the status code carried by the error. Errors not being HTTPError
// are considered a 400 Bad Request.
func CodeOf(err error) Code {
	if httpErr, ok := err.(HTTPError); ok {
		return httpErr.Code
	}

	return BadRequest
}
