package cent

import (
	"github.com/segmentio/encoding/json"
)

// Response is the server reply to a single request. When the reply carries
// an error, the typed *ServerError is built together with the Response and
// kept on it; Client.Call returns it, batch calls leave it for inspection.
type Response struct {
	request    Request
	hasRequest bool
	body       json.RawMessage
	method     string
	errMessage string
	err        *ServerError
}

func newResponse(req *Request, e replyEntry, kinds KindRegistry) *Response {
	r := &Response{
		body:   e.body,
		method: e.method,
	}
	if req != nil {
		r.request = *req
		r.hasRequest = true
	}
	if e.hasError {
		r.errMessage = e.errMessage
		method := e.method
		if method == "" && req != nil {
			method = req.method
		}
		r.err = newServerError(kinds, e.errMessage, e.errCode, method)
		r.err.Response = r
	}
	return r
}

// Request returns the request this response answers. The second value is
// false when the reply had an entry nothing was sent for.
func (r *Response) Request() (Request, bool) {
	return r.request, r.hasRequest
}

// Body returns raw JSON body, nil if server sent no body.
func (r *Response) Body() json.RawMessage {
	return r.body
}

// DecodeBody unmarshals body into v. It is a no-op for empty body.
func (r *Response) DecodeBody(v any) error {
	if len(r.body) == 0 {
		return nil
	}
	return json.Unmarshal(r.body, v)
}

func (r *Response) Method() string {
	return r.method
}

func (r *Response) IsError() bool {
	return r.err != nil
}

func (r *Response) ErrorMessage() string {
	return r.errMessage
}

// Err returns the server error carried by the response or nil.
func (r *Response) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// ServerError returns the typed server error or nil.
func (r *Response) ServerError() *ServerError {
	return r.err
}
