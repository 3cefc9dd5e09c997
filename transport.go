package cent

import "context"

// Transport defines the interface for delivering API requests to Centrifugo.
type Transport interface {
	// Name identifies the transport in errors, logs and metrics.
	Name() string

	// Deliver sends the batch and returns the reply. Failures to deliver
	// must be reported as *TransportError.
	Deliver(ctx context.Context, batch *BatchRequest) (RawReply, error)

	// Close releases resources held by the transport.
	Close() error
}
