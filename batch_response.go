package cent

import (
	"errors"
	"iter"
	"slices"
)

// BatchResponse holds responses to a BatchRequest keyed by the keys the
// reply exposed. A key equal to a request position is matched with that
// request; positions the reply has no key for are reported by Missing.
type BatchResponse struct {
	batch     *BatchRequest
	raw       RawReply
	keys      []int
	responses map[int]*Response
}

func newBatchResponse(batch *BatchRequest, raw RawReply, kinds KindRegistry) (*BatchResponse, error) {
	entries, err := decodeReply(raw)
	if err != nil {
		return nil, err
	}
	br := &BatchResponse{
		batch:     batch,
		raw:       raw,
		keys:      make([]int, 0, len(entries)),
		responses: make(map[int]*Response, len(entries)),
	}
	for _, e := range entries {
		var req *Request
		if r, ok := batch.At(e.key); ok {
			req = &r
		}
		if _, dup := br.responses[e.key]; !dup {
			br.keys = append(br.keys, e.key)
		}
		br.responses[e.key] = newResponse(req, e, kinds)
	}
	return br, nil
}

// Request returns originating batch.
func (br *BatchResponse) Request() *BatchRequest {
	return br.batch
}

func (br *BatchResponse) Raw() RawReply {
	return br.raw
}

func (br *BatchResponse) Len() int {
	return len(br.keys)
}

// At returns response for key.
func (br *BatchResponse) At(key int) (*Response, bool) {
	r, ok := br.responses[key]
	return r, ok
}

// Keys returns response keys in reply order.
func (br *BatchResponse) Keys() []int {
	return slices.Clone(br.keys)
}

// All iterates over responses in reply order.
func (br *BatchResponse) All() iter.Seq2[int, *Response] {
	return func(yield func(int, *Response) bool) {
		for _, k := range br.keys {
			if !yield(k, br.responses[k]) {
				return
			}
		}
	}
}

// Responses returns responses in reply order.
func (br *BatchResponse) Responses() []*Response {
	out := make([]*Response, 0, len(br.keys))
	for _, k := range br.keys {
		out = append(out, br.responses[k])
	}
	return out
}

// First returns the first response in reply order.
func (br *BatchResponse) First() (*Response, bool) {
	if len(br.keys) == 0 {
		return nil, false
	}
	return br.responses[br.keys[0]], true
}

// Missing returns positions of requests the reply has no response for.
func (br *BatchResponse) Missing() []int {
	var missing []int
	for i := range br.batch.Len() {
		if _, ok := br.responses[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// IsError reports whether any response carries a server error.
func (br *BatchResponse) IsError() bool {
	for _, r := range br.responses {
		if r.IsError() {
			return true
		}
	}
	return false
}

// Err joins server errors of all responses in reply order.
func (br *BatchResponse) Err() error {
	var errs []error
	for _, k := range br.keys {
		if err := br.responses[k].Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
