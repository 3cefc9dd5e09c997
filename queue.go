package cent

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"github.com/segmentio/encoding/json"
)

const (
	QueueTransportName = "queue"
	// DefaultQueueName is the Redis list Centrifugo consumes API commands from.
	DefaultQueueName = "centrifugo.api"
)

// Methods Centrifugo accepts over the Redis queue. The queue has no reply
// channel so only fire-and-forget methods are allowed.
var queueMethods = map[string]struct{}{
	"publish":     {},
	"broadcast":   {},
	"unsubscribe": {},
	"disconnect":  {},
}

// QueueSupports reports whether method can be sent over the queue transport.
func QueueSupports(method string) bool {
	_, ok := queueMethods[method]
	return ok
}

// Pusher appends a value to the tail of a Redis list.
type Pusher interface {
	RPush(ctx context.Context, key string, value []byte) error
	Close()
}

// Dialer opens a Pusher. QueueTransport calls it on first delivery.
type Dialer func(ctx context.Context) (Pusher, error)

type QueueOption func(*QueueTransport)

// WithQueueName overrides base list name.
func WithQueueName(name string) QueueOption {
	return func(t *QueueTransport) {
		if name != "" {
			t.queue = name
		}
	}
}

// WithShards spreads pushes over n lists named <queue>.0 ... <queue>.<n-1>.
func WithShards(n int) QueueOption {
	return func(t *QueueTransport) {
		if n > 0 {
			t.shards = n
		}
	}
}

// WithShardPicker sets the function choosing a shard in [0, n). Defaults to
// uniform random choice.
func WithShardPicker(pick func(n int) int) QueueOption {
	return func(t *QueueTransport) {
		if pick != nil {
			t.pick = pick
		}
	}
}

func WithQueueLogger(logger zerolog.Logger) QueueOption {
	return func(t *QueueTransport) {
		t.logger = logger
	}
}

type queueMessage struct {
	Data []Command `json:"data"`
}

type emulatedReply struct {
	Body   map[string]any `json:"body"`
	Method string         `json:"method"`
	Error  *string        `json:"error"`
}

// QueueTransport pushes API commands into a Redis list consumed by
// Centrifugo. Nothing answers a push, so on success the transport replies
// with the params of each request echoed back and no error.
type QueueTransport struct {
	dial   Dialer
	queue  string
	shards int
	pick   func(n int) int
	logger zerolog.Logger

	mu     sync.Mutex
	pusher Pusher
	closed bool
}

func NewQueueTransport(dial Dialer, opts ...QueueOption) *QueueTransport {
	t := &QueueTransport{
		dial:   dial,
		queue:  DefaultQueueName,
		pick:   rand.IntN,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *QueueTransport) Name() string {
	return QueueTransportName
}

// Deliver rejects the whole batch if any of its methods is not allowed over
// the queue, otherwise pushes all commands as one message.
func (t *QueueTransport) Deliver(ctx context.Context, batch *BatchRequest) (RawReply, error) {
	for _, method := range batch.Methods() {
		if !QueueSupports(method) {
			t.logger.Debug().Str("method", method).Msg("method rejected by queue transport")
			return nil, &TransportError{Transport: t.Name(), Err: fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)}
		}
	}

	message, err := json.Marshal(queueMessage{Data: batch.Commands()})
	if err != nil {
		return nil, fmt.Errorf("encode queue message: %w", err)
	}

	pusher, err := t.acquire(ctx)
	if err != nil {
		return nil, &TransportError{Transport: t.Name(), Err: err}
	}

	queue := t.queueName()
	if err := pusher.RPush(ctx, queue, message); err != nil {
		return nil, &TransportError{Transport: t.Name(), Err: fmt.Errorf("%w %s: %w", ErrPushFailed, queue, err)}
	}
	t.logger.Debug().Str("queue", queue).Int("requests", batch.Len()).Msg("batch pushed")

	return emulateReply(batch)
}

func (t *QueueTransport) acquire(ctx context.Context) (Pusher, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrTransportClosed
	}
	if t.pusher != nil {
		return t.pusher, nil
	}
	pusher, err := t.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectFailed, err)
	}
	t.pusher = pusher
	return pusher, nil
}

func (t *QueueTransport) queueName() string {
	if t.shards <= 0 {
		return t.queue
	}
	return t.queue + "." + strconv.Itoa(t.pick(t.shards))
}

func emulateReply(batch *BatchRequest) (RawReply, error) {
	replies := make([]emulatedReply, 0, batch.Len())
	for _, r := range batch.All() {
		replies = append(replies, emulatedReply{Body: r.Command().Params, Method: r.Method()})
	}
	data, err := json.Marshal(replies)
	if err != nil {
		return nil, fmt.Errorf("encode emulated reply: %w", err)
	}
	return data, nil
}

// IsConnected reports whether connection was opened and not yet closed.
func (t *QueueTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pusher != nil
}

// Close releases the connection. Deliveries after Close fail.
func (t *QueueTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	if t.pusher != nil {
		t.pusher.Close()
		t.pusher = nil
	}
	return nil
}
