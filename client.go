package cent

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Result is either *Response or *BatchResponse.
type Result interface {
	IsError() bool
}

// Client is the entry point for calling Centrifugo server API.
//
// Client methods are safe for concurrent use. LastResponse is for debugging
// only: under concurrent calls it returns whichever call finished last.
type Client struct {
	endpoint string
	secret   string
	chain    *Chain
	kinds    KindRegistry
	logger   zerolog.Logger

	mu   sync.RWMutex
	last Result
}

// New creates a client sending requests to endpoint through chain.
func New(endpoint, secret string, chain *Chain, opts ...Option) *Client {
	options := applyOptions(opts)
	return &Client{
		endpoint: endpoint,
		secret:   secret,
		chain:    chain,
		kinds:    options.Kinds,
		logger:   options.Logger,
	}
}

// NewWithHTTP creates a client using a single HTTP transport.
func NewWithHTTP(endpoint, secret string, opts ...Option) *Client {
	return New(endpoint, secret, NewChain([]Transport{NewHTTPTransport()}, opts...), opts...)
}

// NewFromConfig validates config and creates a client with configured
// transport chain. It does not connect anywhere.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	chain, err := BuildChain(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return New(cfg.Endpoint, cfg.Secret, chain, opts...), nil
}

// Chain returns transport chain of the client.
func (c *Client) Chain() *Chain {
	return c.chain
}

// Request builds a request to the client endpoint.
func (c *Client) Request(method string, params map[string]any) (Request, error) {
	return NewRequest(c.endpoint, c.secret, method, params)
}

// Call sends a single request. A server error in the reply is returned as
// *ServerError.
func (c *Client) Call(ctx context.Context, method string, params map[string]any) (*Response, error) {
	req, err := c.Request(method, params)
	if err != nil {
		return nil, err
	}
	return c.callSingle(ctx, c.endpoint, req)
}

func (c *Client) callSingle(ctx context.Context, endpoint string, req Request) (*Response, error) {
	batch, err := newSingleBatch(endpoint, c.secret, req)
	if err != nil {
		return nil, err
	}
	br, err := c.dispatch(ctx, batch)
	if err != nil {
		return nil, err
	}
	resp, ok := br.At(0)
	if !ok {
		c.setLast(br)
		return nil, ErrNoResponse
	}
	c.setLast(resp)
	if resp.IsError() {
		return resp, resp.Err()
	}
	return resp, nil
}

// CallBatch sends requests in one round trip. Server errors are not
// returned: check every Response of the result. An empty batch is answered
// with an empty BatchResponse without reaching any transport.
func (c *Client) CallBatch(ctx context.Context, items ...any) (*BatchResponse, error) {
	batch, err := NewBatchRequest(c.endpoint, c.secret, items...)
	if err != nil {
		return nil, err
	}
	if batch.Len() == 0 {
		br := &BatchResponse{batch: batch, responses: map[int]*Response{}}
		c.setLast(br)
		return br, nil
	}
	br, err := c.dispatch(ctx, batch)
	if err != nil {
		return nil, err
	}
	c.setLast(br)
	return br, nil
}

func (c *Client) dispatch(ctx context.Context, batch *BatchRequest) (*BatchResponse, error) {
	started := time.Now()
	raw, err := c.chain.Deliver(ctx, batch)
	if err != nil {
		c.logger.Error().Err(err).Strs("methods", batch.Methods()).Msg("error sending API request")
		return nil, err
	}
	br, err := newBatchResponse(batch, raw, c.kinds)
	if err != nil {
		c.logger.Error().Err(err).Strs("methods", batch.Methods()).Msg("error decoding API reply")
		return nil, err
	}
	c.logger.Debug().Strs("methods", batch.Methods()).Dur("duration", time.Since(started)).Msg("API request done")
	return br, nil
}

func (c *Client) setLast(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = r
}

// LastResponse returns result of the latest call or nil.
func (c *Client) LastResponse() Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// GenerateConnectionToken returns connection JWT signed with client secret.
func (c *Client) GenerateConnectionToken(user string, exp time.Time, info any) (string, error) {
	return GenerateConnectionToken(c.secret, user, exp, info)
}

// GenerateSubscriptionToken returns subscription JWT signed with client secret.
func (c *Client) GenerateSubscriptionToken(user, channel string, exp time.Time, info any) (string, error) {
	return GenerateSubscriptionToken(c.secret, user, channel, exp, info)
}

// Close closes all transports.
func (c *Client) Close() error {
	return c.chain.Close()
}
