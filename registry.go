package cent

import (
	"sync"
)

// KindRegistry resolves server error messages to error kinds.
type KindRegistry interface {
	Register(message string, kind ErrorKind) error
	Lookup(message string) ErrorKind
}

type kindRegistryImpl struct {
	kinds map[string]ErrorKind
	mu    sync.RWMutex
}

func (r *kindRegistryImpl) Register(message string, kind ErrorKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.kinds[message]; exists {
		return ErrKindAlreadyRegistered
	}
	r.kinds[message] = kind
	return nil
}

func (r *kindRegistryImpl) Lookup(message string) ErrorKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kind, ok := r.kinds[message]
	if !ok {
		return KindUnknown
	}
	return kind
}

// NewKindRegistry returns a registry preloaded with the messages Centrifugo
// is known to reply with.
func NewKindRegistry() KindRegistry {
	r := &kindRegistryImpl{kinds: make(map[string]ErrorKind, len(kindNames))}
	for kind, name := range kindNames {
		if kind == KindUnknown {
			continue
		}
		r.kinds[name] = kind
	}
	return r
}

var defaultKinds = NewKindRegistry()

// RegisterErrorKind teaches the package-wide registry a new server error
// message.
func RegisterErrorKind(message string, kind ErrorKind) error {
	return defaultKinds.Register(message, kind)
}

func newServerError(kinds KindRegistry, message string, code uint32, method string) *ServerError {
	if kinds == nil {
		kinds = defaultKinds
	}
	return &ServerError{
		Kind:    kinds.Lookup(message),
		Message: message,
		Code:    code,
		Method:  method,
	}
}
