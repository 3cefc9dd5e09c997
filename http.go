package cent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const HTTPTransportName = "http"

type HTTPOption func(*HTTPTransport)

// WithHTTPClient makes transport send requests with client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		if client != nil {
			t.client = client
			t.ownsClient = true
		}
	}
}

// WithHTTPTimeout sets timeout of the whole request, including reading reply.
func WithHTTPTimeout(timeout time.Duration) HTTPOption {
	return func(t *HTTPTransport) {
		if timeout > 0 {
			t.timeout = timeout
		}
	}
}

// WithHTTPHeader adds header to every request.
func WithHTTPHeader(key, value string) HTTPOption {
	return func(t *HTTPTransport) {
		t.headers.Set(key, value)
	}
}

// HTTPTransport posts API requests to the Centrifugo HTTP API endpoint.
type HTTPTransport struct {
	client  *http.Client
	timeout time.Duration
	headers http.Header
	// ownsClient is set when client came from WithHTTPClient. Otherwise
	// client shares http.DefaultTransport with the rest of the process.
	ownsClient bool
}

func NewHTTPTransport(opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		client:  http.DefaultClient,
		headers: make(http.Header),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.timeout > 0 {
		client := *t.client
		client.Timeout = t.timeout
		t.client = &client
	}
	return t
}

func (t *HTTPTransport) Name() string {
	return HTTPTransportName
}

// Deliver posts batch body to batch endpoint. Anything but HTTP 200 is a
// delivery failure.
func (t *HTTPTransport) Deliver(ctx context.Context, batch *BatchRequest) (RawReply, error) {
	body, err := batch.Body()
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, batch.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Transport: t.Name(), Err: err}
	}
	for key, values := range batch.Headers() {
		req.Header[key] = values
	}
	for key, values := range t.headers {
		req.Header[key] = values
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &TransportError{Transport: t.Name(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Transport: t.Name(), StatusCode: resp.StatusCode, Err: ErrUnexpectedStatus}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Transport: t.Name(), Err: err}
	}
	return data, nil
}

// Close releases idle connections of a client set with WithHTTPClient.
func (t *HTTPTransport) Close() error {
	if t.ownsClient {
		t.client.CloseIdleConnections()
	}
	return nil
}
