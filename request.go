package cent

import (
	"maps"
	"net/http"

	"github.com/segmentio/encoding/json"
)

// Command is a single server API call as it travels on the wire.
type Command struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

// Request describes one API call together with the endpoint and the secret
// used to authenticate it. A Request is immutable once built.
type Request struct {
	endpoint string
	secret   string
	method   string
	params   map[string]any
}

// NewRequest builds a Request. Params are copied.
func NewRequest(endpoint, secret, method string, params map[string]any) (Request, error) {
	if method == "" {
		return Request{}, ErrEmptyMethod
	}
	p := make(map[string]any, len(params))
	maps.Copy(p, params)
	return Request{
		endpoint: endpoint,
		secret:   secret,
		method:   method,
		params:   p,
	}, nil
}

func (r Request) Endpoint() string {
	return r.endpoint
}

func (r Request) Method() string {
	return r.method
}

// Params returns a shallow copy of request params.
func (r Request) Params() map[string]any {
	return maps.Clone(r.params)
}

// Command returns wire representation of the request.
func (r Request) Command() Command {
	params := r.params
	if params == nil {
		params = map[string]any{}
	}
	return Command{Method: r.method, Params: params}
}

// Headers returns HTTP headers authenticating the request with the API key.
func (r Request) Headers() http.Header {
	return apiHeaders(r.secret)
}

// Body returns JSON encoded command.
func (r Request) Body() ([]byte, error) {
	return json.Marshal(r.Command())
}

func apiHeaders(secret string) http.Header {
	h := make(http.Header, 2)
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "apikey "+secret)
	return h
}
