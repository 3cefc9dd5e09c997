package cent

import (
	"context"
	"sync"
)

// MockTransport implements the Transport interface for testing
type MockTransport struct {
	mu        sync.Mutex
	name      string
	reply     RawReply
	err       error
	delivered []*BatchRequest
	closed    bool
}

func NewMockTransport(name string, reply string, err error) *MockTransport {
	return &MockTransport{
		name:  name,
		reply: RawReply(reply),
		err:   err,
	}
}

func (m *MockTransport) Name() string {
	return m.name
}

func (m *MockTransport) Deliver(_ context.Context, batch *BatchRequest) (RawReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.delivered = append(m.delivered, batch)
	if m.err != nil {
		return nil, m.err
	}
	return m.reply, nil
}

func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockTransport) GetDelivered() []*BatchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*BatchRequest, len(m.delivered))
	copy(result, m.delivered)
	return result
}

func (m *MockTransport) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func failingTransport(name string) *MockTransport {
	return NewMockTransport(name, "", &TransportError{Transport: name, Err: ErrUnexpectedStatus, StatusCode: 502})
}
