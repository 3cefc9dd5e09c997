package cent

import (
	"fmt"
	"iter"
	"net/http"
	"slices"

	"github.com/segmentio/encoding/json"
)

// BatchRequest is an ordered group of requests sent in one round trip.
// Position of a request in the batch is what its response is matched by.
type BatchRequest struct {
	endpoint string
	secret   string
	requests []Request
	// single batches encode as a bare command instead of an array.
	single bool
}

// NewBatchRequest builds a batch from items. An item is a Request, *Request,
// []Request, *BatchRequest or []any holding any of these; containers are
// flattened recursively keeping order.
func NewBatchRequest(endpoint, secret string, items ...any) (*BatchRequest, error) {
	b := &BatchRequest{endpoint: endpoint, secret: secret}
	for _, item := range items {
		if err := b.add(item); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// newSingleBatch wraps one request sent by a single call.
func newSingleBatch(endpoint, secret string, req Request) (*BatchRequest, error) {
	b, err := NewBatchRequest(endpoint, secret, req)
	if err != nil {
		return nil, err
	}
	b.single = true
	return b, nil
}

func (b *BatchRequest) add(item any) error {
	switch v := item.(type) {
	case Request:
		if v.method == "" {
			return ErrEmptyMethod
		}
		b.requests = append(b.requests, v)
	case *Request:
		if v == nil {
			return fmt.Errorf("%w: nil request", ErrInvalidBatchItem)
		}
		return b.add(*v)
	case []Request:
		for _, r := range v {
			if err := b.add(r); err != nil {
				return err
			}
		}
	case *BatchRequest:
		if v == nil {
			return fmt.Errorf("%w: nil batch", ErrInvalidBatchItem)
		}
		for _, r := range v.requests {
			if err := b.add(r); err != nil {
				return err
			}
		}
	case []any:
		for _, r := range v {
			if err := b.add(r); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %T", ErrInvalidBatchItem, item)
	}
	return nil
}

func (b *BatchRequest) Endpoint() string {
	return b.endpoint
}

func (b *BatchRequest) Len() int {
	return len(b.requests)
}

// At returns request at position i.
func (b *BatchRequest) At(i int) (Request, bool) {
	if i < 0 || i >= len(b.requests) {
		return Request{}, false
	}
	return b.requests[i], true
}

// All iterates over requests in insertion order.
func (b *BatchRequest) All() iter.Seq2[int, Request] {
	return slices.All(b.requests)
}

func (b *BatchRequest) Requests() []Request {
	return slices.Clone(b.requests)
}

func (b *BatchRequest) Methods() []string {
	methods := make([]string, 0, len(b.requests))
	for _, r := range b.requests {
		methods = append(methods, r.method)
	}
	return methods
}

func (b *BatchRequest) Commands() []Command {
	commands := make([]Command, 0, len(b.requests))
	for _, r := range b.requests {
		commands = append(commands, r.Command())
	}
	return commands
}

func (b *BatchRequest) Headers() http.Header {
	return apiHeaders(b.secret)
}

// Body returns JSON array of batch commands, or the only command of a
// batch built for a single call.
func (b *BatchRequest) Body() ([]byte, error) {
	if b.single && len(b.requests) == 1 {
		return b.requests[0].Body()
	}
	return json.Marshal(b.Commands())
}
