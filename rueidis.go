package cent

import (
	"context"

	"github.com/redis/rueidis"
)

type rueidisPusher struct {
	client rueidis.Client
}

// NewRueidisPusher wraps rueidis client. Closing the pusher closes client.
func NewRueidisPusher(client rueidis.Client) Pusher {
	return &rueidisPusher{client: client}
}

func (p *rueidisPusher) RPush(ctx context.Context, key string, value []byte) error {
	cmd := p.client.B().Rpush().Key(key).Element(string(value)).Build()
	return p.client.Do(ctx, cmd).Error()
}

func (p *rueidisPusher) Close() {
	p.client.Close()
}

// RueidisDialer returns a Dialer connecting with rueidis on first use.
func RueidisDialer(address string, option rueidis.ClientOption) Dialer {
	return func(_ context.Context) (Pusher, error) {
		if len(option.InitAddress) == 0 {
			option.InitAddress = []string{address}
		}
		option.DisableCache = true
		client, err := rueidis.NewClient(option)
		if err != nil {
			return nil, err
		}
		return NewRueidisPusher(client), nil
	}
}
