package http1

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/indigo-web/hello/config"
	"github.com/indigo-web/hello/http"
	"github.com/indigo-web/hello/http/status"
	"github.com/indigo-web/hello/transport/dummy"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const helloResponse = "HTTP/1.1 200 OK\r\nContent-Length: 5\r\nContent-Type: text/plain\r\n\r\nhello"

func newSuit(client *dummy.Client) *Suit {
	return Initialize(config.Default(), zerolog.Nop(), client)
}

func rejection(err error) string {
	return string(Render(nil, http.Error(err)))
}

func disperse(data []byte, n int) (parts [][]byte) {
	return splitIntoParts(data, n)
}

func TestSuit(t *testing.T) {
	t.Run("up to 32 headers", func(t *testing.T) {
		for _, n := range []int{0, 1, 5, 31, 32} {
			client := dummy.NewMockClient(generateRequest("/", generateHeaders(n)))
			suit := newSuit(client)
			require.True(t, suit.ServeOnce(), n)
			require.Equal(t, helloResponse, client.Written(), n)
			require.False(t, suit.ServeOnce(), n)
		}
	})

	t.Run("33 headers", func(t *testing.T) {
		client := dummy.NewMockClient(generateRequest("/", generateHeaders(33)))
		suit := newSuit(client)
		require.False(t, suit.ServeOnce())
		require.Equal(t, rejection(status.ErrTooManyHeaders), client.Written())
		require.True(t, strings.HasPrefix(client.Written(), "HTTP/1.1 400 Bad Request\r\n"))
	})

	t.Run("split head", func(t *testing.T) {
		raw := generateRequest("/split", generateHeaders(3))
		lf := strings.IndexByte(string(raw), '\n')
		client := dummy.NewMockClient(raw[:lf+1], raw[lf+1:])
		suit := newSuit(client)

		require.True(t, suit.ServeOnce())
		require.Empty(t, client.Written())
		require.True(t, suit.ServeOnce())
		require.Equal(t, helloResponse, client.Written())
	})

	t.Run("dispersed head", func(t *testing.T) {
		raw := generateRequest("/"+strings.Repeat("a", 100), generateHeaders(10))

		for _, n := range []int{1, 2, 7, 64} {
			client := dummy.NewMockClient(disperse(raw, n)...)
			newSuit(client).Serve()
			require.Equal(t, helloResponse, client.Written(), n)
		}
	})

	t.Run("pipelined in a single chunk", func(t *testing.T) {
		raw := "GET /first HTTP/1.1\r\n\r\nGET /second HTTP/1.1\r\nA: b\r\n\r\n"
		client := dummy.NewMockClient([]byte(raw))
		suit := newSuit(client)

		require.True(t, suit.ServeOnce())
		require.Equal(t, helloResponse, client.Written())
		require.True(t, suit.ServeOnce())
		require.Equal(t, helloResponse+helloResponse, client.Written())
		require.False(t, suit.ServeOnce())
	})

	t.Run("pipelined across chunks", func(t *testing.T) {
		first, second := "GET /first HTTP/1.1\r\nA: b\r\n\r\n", "GET /second HTTP/1.1\r\n\r\n"
		joined := first + second
		client := dummy.NewMockClient([]byte(joined[:len(first)+5]), []byte(joined[len(first)+5:]))
		newSuit(client).Serve()
		require.Equal(t, helloResponse+helloResponse, client.Written())
	})

	t.Run("pipelined then malformed", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\n\r\nGET / HTTP/1.1\r\nbroken\r\n\r\nGET / HTTP/1.1\r\n\r\n"
		client := dummy.NewMockClient([]byte(raw))
		newSuit(client).Serve()
		require.Equal(t, helloResponse+rejection(status.ErrBadHeader), client.Written())
	})

	t.Run("many pipelined", func(t *testing.T) {
		var raw strings.Builder
		for i := range 100 {
			raw.WriteString(fmt.Sprintf("GET /%d HTTP/1.1\r\nIndex: %d\r\n\r\n", i, i))
		}

		client := dummy.NewMockClient(disperse([]byte(raw.String()), 1024)...)
		newSuit(client).Serve()
		require.Equal(t, strings.Repeat(helloResponse, 100), client.Written())
	})

	t.Run("request with body bytes", func(t *testing.T) {
		// body isn't consumed, so it's parsed as the next request head
		raw := "POST / HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"
		client := dummy.NewMockClient([]byte(raw))
		newSuit(client).Serve()
		require.Equal(t, helloResponse, client.Written())
	})

	t.Run("nothing then close", func(t *testing.T) {
		client := dummy.NewMockClient()
		suit := newSuit(client)
		require.False(t, suit.ServeOnce())
		require.Empty(t, client.Written())
	})

	t.Run("empty reads", func(t *testing.T) {
		client := dummy.NewMockClient([]byte{}, []byte("GET / HTTP/1.1\r\n"), []byte{}, []byte("\r\n"))
		suit := newSuit(client)
		for range 4 {
			require.True(t, suit.ServeOnce())
		}

		require.Equal(t, helloResponse, client.Written())
		require.False(t, suit.ServeOnce())
	})

	t.Run("incomplete head then close", func(t *testing.T) {
		client := dummy.NewMockClient([]byte("GET / HTTP/1.1\r\nHost: loc"))
		newSuit(client).Serve()
		require.Empty(t, client.Written())
	})

	t.Run("malformed", func(t *testing.T) {
		for _, tc := range []struct {
			raw string
			err error
		}{
			{"GET / HTTP/1.1\r\nHello World\r\n\r\n", status.ErrBadHeaderName},
			{"GET / HTTP/3.0\r\n\r\n", status.ErrUnsupportedProtocol},
			{"G{T / HTTP/1.1\r\n\r\n", status.ErrBadMethod},
		} {
			client := dummy.NewMockClient([]byte(tc.raw))
			suit := newSuit(client)
			require.False(t, suit.ServeOnce())
			require.Equal(t, rejection(tc.err), client.Written())
		}
	})

	t.Run("write failure", func(t *testing.T) {
		client := dummy.NewMockClient([]byte("GET / HTTP/1.1\r\n\r\n")).
			FailWrites(errors.New("broken pipe"))
		require.False(t, newSuit(client).ServeOnce())
	})

	t.Run("rejection write failure", func(t *testing.T) {
		client := dummy.NewMockClient([]byte("GET / HTTP/9.1\r\n\r\n")).
			FailWrites(errors.New("broken pipe"))
		require.False(t, newSuit(client).ServeOnce())
	})

	t.Run("configurable headers limit", func(t *testing.T) {
		cfg := config.Default()
		cfg.Headers.MaxNumber = 1
		client := dummy.NewMockClient(generateRequest("/", generateHeaders(2)))
		suit := Initialize(cfg, zerolog.Nop(), client)
		require.False(t, suit.ServeOnce())
		require.Equal(t, rejection(status.ErrTooManyHeaders), client.Written())
	})
}

func BenchmarkSuit(b *testing.B) {
	b.Run("simple get", func(b *testing.B) {
		raw := []byte("GET / HTTP/1.1\r\nAccept-Encoding: identity\r\n\r\n")
		client := dummy.NewMockClient(raw).LoopReads().Journaling(false)
		suit := newSuit(client)
		b.SetBytes(int64(len(raw)))
		b.ReportAllocs()
		b.ResetTimer()

		for range b.N {
			suit.ServeOnce()
		}
	})

	b.Run("32 headers dispersed", func(b *testing.B) {
		raw := generateRequest("/"+strings.Repeat("a", 500), generateHeaders(32))
		dispersed := disperse(raw, config.Default().NET.ReadBufferSize)
		client := dummy.NewMockClient(dispersed...).LoopReads().Journaling(false)
		suit := newSuit(client)
		b.SetBytes(int64(len(raw)))
		b.ReportAllocs()
		b.ResetTimer()

		for range b.N {
			for range dispersed {
				suit.ServeOnce()
			}
		}
	})
}
