package cent

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func httpBatch(t *testing.T, endpoint string) *BatchRequest {
	t.Helper()
	req, err := NewRequest(endpoint, "secret", "publish", map[string]any{"channel": "news", "data": 1})
	require.NoError(t, err)
	batch, err := NewBatchRequest(endpoint, "secret", req)
	require.NoError(t, err)
	return batch
}

func TestHTTPTransportDeliver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api", r.URL.Path)
		assert.Equal(t, "apikey secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "tests", r.Header.Get("X-Client"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `[{"method":"publish","params":{"channel":"news","data":1}}]`, string(body))
		_, _ = w.Write([]byte(`[{"method":"publish","body":{}}]`))
	}))
	defer srv.Close()

	transport := NewHTTPTransport(WithHTTPHeader("X-Client", "tests"))
	defer func() { _ = transport.Close() }()
	assert.Equal(t, HTTPTransportName, transport.Name())

	reply, err := transport.Deliver(context.Background(), httpBatch(t, srv.URL+"/api"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"method":"publish","body":{}}]`, string(reply))
}

func TestHTTPTransportUnexpectedStatus(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError, http.StatusCreated} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := replyServer(t, status, `{"error":"ignored"}`)
			_, err := NewHTTPTransport().Deliver(context.Background(), httpBatch(t, srv.URL))

			var transportErr *TransportError
			require.ErrorAs(t, err, &transportErr)
			assert.Equal(t, status, transportErr.StatusCode)
			assert.Equal(t, HTTPTransportName, transportErr.Transport)
			assert.ErrorIs(t, err, ErrUnexpectedStatus)
		})
	}
}

func TestHTTPTransportConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	_, err := NewHTTPTransport().Deliver(context.Background(), httpBatch(t, endpoint))
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Zero(t, transportErr.StatusCode)
}

func TestHTTPTransportInvalidEndpoint(t *testing.T) {
	_, err := NewHTTPTransport().Deliver(context.Background(), httpBatch(t, "://bad"))
	var transportErr *TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestHTTPTransportTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	transport := NewHTTPTransport(WithHTTPClient(&http.Client{}), WithHTTPTimeout(50*time.Millisecond))
	defer func() { _ = transport.Close() }()

	started := time.Now()
	_, err := transport.Deliver(context.Background(), httpBatch(t, srv.URL))
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Less(t, time.Since(started), 900*time.Millisecond)
}

func TestHTTPTransportTimeoutDoesNotTouchDefaultClient(t *testing.T) {
	_ = NewHTTPTransport(WithHTTPTimeout(time.Second))
	assert.Zero(t, http.DefaultClient.Timeout)
}

type idleCounter struct {
	http.RoundTripper
	closed int
}

func (c *idleCounter) CloseIdleConnections() {
	c.closed++
}

func TestHTTPTransportCloseLeavesDefaultTransport(t *testing.T) {
	shared := &idleCounter{RoundTripper: http.DefaultTransport}
	previous := http.DefaultTransport
	http.DefaultTransport = shared
	t.Cleanup(func() { http.DefaultTransport = previous })

	require.NoError(t, NewHTTPTransport().Close())
	require.NoError(t, NewHTTPTransport(WithHTTPTimeout(time.Second)).Close())
	assert.Zero(t, shared.closed)

	own := &idleCounter{RoundTripper: previous}
	transport := NewHTTPTransport(WithHTTPClient(&http.Client{Transport: own}), WithHTTPTimeout(time.Second))
	require.NoError(t, transport.Close())
	assert.Equal(t, 1, own.closed)
	assert.Zero(t, shared.closed)
}

func TestHTTPTransportFailoverToSecondEndpointTransport(t *testing.T) {
	srv := replyServer(t, http.StatusServiceUnavailable, "")
	fallback := NewMockTransport("fallback", `[{"method":"publish"}]`, nil)
	chain := NewChain([]Transport{NewHTTPTransport(), fallback})

	reply, err := chain.Deliver(context.Background(), httpBatch(t, srv.URL))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"method":"publish"}]`, string(reply))
	assert.Len(t, fallback.GetDelivered(), 1)
}
