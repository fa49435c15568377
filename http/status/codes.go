package status

import "strconv"

type (
	Code   uint16
	Status string
)

// HTTP status codes as registered with IANA. Only codes with a registered reason phrase are
// listed, however any code in range 100-599 may be sent.
// See: https://www.iana.org/assignments/http-status-codes/http-status-codes.xhtml
const (
	Continue           Code = 100 // RFC 9110, 15.2.1
	SwitchingProtocols Code = 101 // RFC 9110, 15.2.2

	OK        Code = 200 // RFC 9110, 15.3.1
	Created   Code = 201 // RFC 9110, 15.3.2
	Accepted  Code = 202 // RFC 9110, 15.3.3
	NoContent Code = 204 // RFC 9110, 15.3.5

	MovedPermanently  Code = 301 // RFC 9110, 15.4.2
	Found             Code = 302 // RFC 9110, 15.4.3
	NotModified       Code = 304 // RFC 9110, 15.4.5
	TemporaryRedirect Code = 307 // RFC 9110, 15.4.8
	PermanentRedirect Code = 308 // RFC 9110, 15.4.9

	BadRequest                  Code = 400 // RFC 9110, 15.5.1
	Unauthorized                Code = 401 // RFC 9110, 15.5.2
	Forbidden                   Code = 403 // RFC 9110, 15.5.4
	NotFound                    Code = 404 // RFC 9110, 15.5.5
	MethodNotAllowed            Code = 405 // RFC 9110, 15.5.6
	RequestTimeout              Code = 408 // RFC 9110, 15.5.9
	RequestURITooLong           Code = 414 // RFC 9110, 15.5.15
	TooManyRequests             Code = 429 // RFC 6585, 4
	RequestHeaderFieldsTooLarge Code = 431 // RFC 6585, 5

	InternalServerError     Code = 500 // RFC 9110, 15.6.1
	NotImplemented          Code = 501 // RFC 9110, 15.6.2
	BadGateway              Code = 502 // RFC 9110, 15.6.3
	ServiceUnavailable      Code = 503 // RFC 9110, 15.6.4
	GatewayTimeout          Code = 504 // RFC 9110, 15.6.5
	HTTPVersionNotSupported Code = 505 // RFC 9110, 15.6.6
)

const (
	minCode = 100
	maxCode = 599
)

var texts = map[Code]Status{
	Continue:                    "Continue",
	SwitchingProtocols:          "Switching Protocols",
	OK:                          "OK",
	Created:                     "Created",
	Accepted:                    "Accepted",
	NoContent:                   "No Content",
	MovedPermanently:            "Moved Permanently",
	Found:                       "Found",
	NotModified:                 "Not Modified",
	TemporaryRedirect:           "Temporary Redirect",
	PermanentRedirect:           "Permanent Redirect",
	BadRequest:                  "Bad Request",
	Unauthorized:                "Unauthorized",
	Forbidden:                   "Forbidden",
	NotFound:                    "Not Found",
	MethodNotAllowed:            "Method Not Allowed",
	RequestTimeout:              "Request Timeout",
	RequestURITooLong:           "Request URI Too Long",
	TooManyRequests:             "Too Many Requests",
	RequestHeaderFieldsTooLarge: "Request Header Fields Too Large",
	InternalServerError:         "Internal Server Error",
	NotImplemented:              "Not Implemented",
	BadGateway:                  "Bad Gateway",
	ServiceUnavailable:          "Service Unavailable",
	GatewayTimeout:              "Gateway Timeout",
	HTTPVersionNotSupported:     "HTTP Version Not Supported",
}

// KnownCodes lists every code having a registered reason phrase.
var KnownCodes = func() []Code {
	codes := make([]Code, 0, len(texts))
	for code := Code(minCode); code <= maxCode; code++ {
		if _, ok := texts[code]; ok {
			codes = append(codes, code)
		}
	}

	return codes
}()

// Text returns a reason phrase for the code. It returns "Unknown Status Code" if the
// code isn't registered.
func Text(code Code) Status {
	if text, ok := texts[code]; ok {
		return text
	}

	return "Unknown Status Code"
}

var stringCodes = func() (lut [maxCode + 1]string) {
	for code := minCode; code <= maxCode; code++ {
		lut[code] = strconv.Itoa(code)
	}

	return lut
}()

// StringCode returns the decimal representation of the code. Codes in range 100-599 are
// served from a pre-rendered table.
func StringCode(code Code) string {
	if code >= minCode && code <= maxCode {
		return stringCodes[code]
	}

	return strconv.Itoa(int(code))
}

// Valid reports whether the code fits into the range of representable status codes.
func Valid(code Code) bool {
	return code >= minCode && code <= maxCode
}
