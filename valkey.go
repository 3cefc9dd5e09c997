package cent

import (
	"context"

	"github.com/valkey-io/valkey-go"
)

type valkeyPusher struct {
	client valkey.Client
}

// NewValkeyPusher wraps valkey client. Closing the pusher closes client.
func NewValkeyPusher(client valkey.Client) Pusher {
	return &valkeyPusher{client: client}
}

func (p *valkeyPusher) RPush(ctx context.Context, key string, value []byte) error {
	cmd := p.client.B().Rpush().Key(key).Element(string(value)).Build()
	return p.client.Do(ctx, cmd).Error()
}

func (p *valkeyPusher) Close() {
	p.client.Close()
}

// NewValkeyClient creates a new valkey client with common configuration
func NewValkeyClient(address string, options ...valkey.ClientOption) (valkey.Client, error) {
	var clientOption valkey.ClientOption
	if len(options) > 0 {
		clientOption = options[0]
	}
	if len(clientOption.InitAddress) == 0 {
		clientOption.InitAddress = []string{address}
	}
	// Pushing does not benefit from client side caching, and servers
	// without RESP3 reject it.
	clientOption.DisableCache = true

	client, err := valkey.NewClient(clientOption)
	if err != nil {
		return nil, err
	}

	return client, nil
}

// ValkeyDialer returns a Dialer connecting with valkey-go on first use.
func ValkeyDialer(address string, option valkey.ClientOption) Dialer {
	return func(_ context.Context) (Pusher, error) {
		client, err := NewValkeyClient(address, option)
		if err != nil {
			return nil, err
		}
		return NewValkeyPusher(client), nil
	}
}

// NewValkeyQueueTransport creates queue transport pushing over valkey-go.
func NewValkeyQueueTransport(address string, option valkey.ClientOption, opts ...QueueOption) *QueueTransport {
	return NewQueueTransport(ValkeyDialer(address, option), opts...)
}
