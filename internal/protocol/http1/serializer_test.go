package http1

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	stdhttp "net/http"
	"testing"

	"github.com/indigo-web/hello/http"
	"github.com/indigo-web/hello/http/status"
	"github.com/indigo-web/hello/kv"
	"github.com/indigo-web/hello/transport/dummy"
	"github.com/stretchr/testify/require"
)

func readResponse(t *testing.T, data []byte) (*stdhttp.Response, string) {
	resp, err := stdhttp.ReadResponse(bufio.NewReader(bytes.NewReader(data)), nil)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, string(body)
}

func TestRender(t *testing.T) {
	t.Run("hello", func(t *testing.T) {
		want := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\nContent-Type: text/plain\r\n\r\nhello"
		require.Equal(t, want, string(Render(nil, http.Hello())))
	})

	t.Run("literal response", func(t *testing.T) {
		resp := &http.Response{Code: 200, Status: "OK", Body: []byte("hello")}
		want := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\nContent-Type: text/plain\r\n\r\nhello"
		require.Equal(t, want, string(Render(nil, resp)))
	})

	t.Run("extra headers", func(t *testing.T) {
		resp := http.NewResponse(status.OK, "OK", nil,
			kv.Pair{Key: "X-First", Value: "1"},
			kv.Pair{Key: "X-Second", Value: "2"},
		).Header("X-First", "3")

		want := "HTTP/1.1 200 OK\r\nContent-Length: 0\r\nContent-Type: text/plain\r\n" +
			"X-First: 1\r\nX-Second: 2\r\nX-First: 3\r\n\r\n"
		require.Equal(t, want, string(Render(nil, resp)))
	})

	t.Run("duplicate content length is not rejected", func(t *testing.T) {
		resp := http.Hello().Header("Content-Length", "5")
		want := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\nContent-Type: text/plain\r\n" +
			"Content-Length: 5\r\n\r\nhello"
		require.Equal(t, want, string(Render(nil, resp)))
	})

	t.Run("bad request", func(t *testing.T) {
		data := Render(nil, http.Error(status.ErrTooManyHeaders))
		resp, body := readResponse(t, data)
		require.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "400 Bad Request", resp.Status)
		require.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
		require.Equal(t, int64(len(status.ErrTooManyHeaders.Error())), resp.ContentLength)
		require.Equal(t, status.ErrTooManyHeaders.Error(), body)
	})

	t.Run("custom code and reason", func(t *testing.T) {
		resp := http.NewResponse(418, "Short And Stout", nil).String("tea")
		data := Render(nil, resp)
		require.True(t, bytes.HasPrefix(data, []byte("HTTP/1.1 418 Short And Stout\r\n")))
		parsed, body := readResponse(t, data)
		require.Equal(t, 418, parsed.StatusCode)
		require.Equal(t, "tea", body)
	})

	t.Run("empty reason falls back", func(t *testing.T) {
		resp := &http.Response{Code: status.NotFound}
		data := Render(nil, resp)
		require.True(t, bytes.HasPrefix(data, []byte("HTTP/1.1 404 Not Found\r\n")))
	})

	t.Run("appends to the buffer", func(t *testing.T) {
		data := Render([]byte("prefix"), http.Hello())
		require.Equal(t, "prefixHTTP/1.1 200 OK\r\n", string(data[:len("prefixHTTP/1.1 200 OK\r\n")]))
	})
}

func TestSerializer(t *testing.T) {
	t.Run("writes are not mixed", func(t *testing.T) {
		client := dummy.NewMockClient()
		s := newSerializer(client, make([]byte, 0, 16))
		require.NoError(t, s.Write(http.Error(status.ErrBadPath)))
		require.NoError(t, s.Write(http.Hello()))

		want := string(Render(nil, http.Error(status.ErrBadPath))) + string(Render(nil, http.Hello()))
		require.Equal(t, want, client.Written())
	})

	t.Run("failure is propagated", func(t *testing.T) {
		failure := errors.New("connection reset")
		client := dummy.NewMockClient().FailWrites(failure)
		s := newSerializer(client, nil)
		require.ErrorIs(t, s.Write(http.Hello()), failure)
	})
}

func BenchmarkRender(b *testing.B) {
	resp := http.Hello()
	buff := make([]byte, 0, 256)
	b.SetBytes(int64(len(Render(nil, resp))))
	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		buff = Render(buff[:0], resp)
	}
}
