package cent

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyMethod           = errors.New("empty method")
	ErrInvalidBatchItem      = errors.New("invalid batch item")
	ErrNoTransports          = errors.New("no transports configured")
	ErrUnexpectedStatus      = errors.New("unexpected response status")
	ErrUnsupportedMethod     = errors.New("method not supported by transport")
	ErrPushFailed            = errors.New("failed to push to queue")
	ErrConnectFailed         = errors.New("failed to connect")
	ErrTransportClosed       = errors.New("transport closed")
	ErrMalformedReply        = errors.New("malformed reply")
	ErrNoResponse            = errors.New("no response for request")
	ErrKindAlreadyRegistered = errors.New("error kind already registered")
	ErrInvalidConfig         = errors.New("invalid config")
)

// TransportError is returned when a transport could not deliver a request.
// Only this error makes the chain fall over to the next transport.
type TransportError struct {
	Transport  string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s transport: %v: %d", e.Transport, e.Err, e.StatusCode)
	}
	return fmt.Sprintf("%s transport: %v", e.Transport, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies an error string reported by the server.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidMessage
	KindInvalidToken
	KindUnauthorized
	KindMethodNotFound
	KindPermissionDenied
	KindNamespaceNotFound
	KindInternalServerError
	KindAlreadySubscribed
	KindLimitExceeded
	KindNotAvailable
	KindSendTimeout
	KindClientClosed
)

var kindNames = map[ErrorKind]string{
	KindUnknown:             "unknown",
	KindInvalidMessage:      "invalid message",
	KindInvalidToken:        "invalid token",
	KindUnauthorized:        "unauthorized",
	KindMethodNotFound:      "method not found",
	KindPermissionDenied:    "permission denied",
	KindNamespaceNotFound:   "namespace not found",
	KindInternalServerError: "internal server error",
	KindAlreadySubscribed:   "already subscribed",
	KindLimitExceeded:       "limit exceeded",
	KindNotAvailable:        "not available",
	KindSendTimeout:         "send timeout",
	KindClientClosed:        "client is closed",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ServerError is an error the server reported inside a delivered reply.
// Kind is resolved from Message through the kind registry; messages nobody
// registered resolve to KindUnknown and keep their text.
type ServerError struct {
	Kind    ErrorKind
	Message string
	Code    uint32
	Method  string
	// Response the error was decoded from, nil for the sentinels below.
	Response *Response
}

func (e *ServerError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("centrifugo: %d: %s", e.Code, e.Message)
	}
	return "centrifugo: " + e.Message
}

// Is matches sentinels by kind, so errors.Is(err, ErrLimitExceeded) holds for
// any ServerError of that kind.
func (e *ServerError) Is(target error) bool {
	t, ok := target.(*ServerError)
	if !ok {
		return false
	}
	if t.Kind == KindUnknown {
		return e.Kind == KindUnknown && (t.Message == "" || t.Message == e.Message)
	}
	return e.Kind == t.Kind
}

// Here we define sentinels for every known server error kind.
var (
	ErrServer              = &ServerError{Kind: KindUnknown}
	ErrInvalidMessage      = &ServerError{Kind: KindInvalidMessage, Message: "invalid message"}
	ErrInvalidToken        = &ServerError{Kind: KindInvalidToken, Message: "invalid token"}
	ErrUnauthorized        = &ServerError{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrMethodNotFound      = &ServerError{Kind: KindMethodNotFound, Message: "method not found"}
	ErrPermissionDenied    = &ServerError{Kind: KindPermissionDenied, Message: "permission denied"}
	ErrNamespaceNotFound   = &ServerError{Kind: KindNamespaceNotFound, Message: "namespace not found"}
	ErrInternalServerError = &ServerError{Kind: KindInternalServerError, Message: "internal server error"}
	ErrAlreadySubscribed   = &ServerError{Kind: KindAlreadySubscribed, Message: "already subscribed"}
	ErrLimitExceeded       = &ServerError{Kind: KindLimitExceeded, Message: "limit exceeded"}
	ErrNotAvailable        = &ServerError{Kind: KindNotAvailable, Message: "not available"}
	ErrSendTimeout         = &ServerError{Kind: KindSendTimeout, Message: "send timeout"}
	ErrClientClosed        = &ServerError{Kind: KindClientClosed, Message: "client is closed"}
)
