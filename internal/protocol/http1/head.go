package http1

import (
	"errors"

	"github.com/indigo-web/hello/config"
	"github.com/indigo-web/hello/http"
	"github.com/indigo-web/hello/kv"
)

var ErrIncomplete = errors.New("incomplete request head")

// ParseHead parses a single request head out of data, returning the request along with
// the offset the head ends at. Bytes past the offset are left untouched. If data doesn't
// contain the whole head, ErrIncomplete is returned.
func ParseHead(cfg *config.Config, data []byte) (*http.Request, int, error) {
	request := http.NewRequest(kv.NewPrealloc(cfg.Headers.Prealloc))
	requestLine, headers := Buffers(cfg)

	state, extra, err := NewParser(cfg, request, requestLine, headers).Parse(data)
	switch state {
	case HeadersCompleted:
		return request, len(data) - len(extra), nil
	case Error:
		return nil, 0, err
	default:
		return nil, 0, ErrIncomplete
	}
}
