package cent

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Chain is an ordered list of transports. Deliver tries them in order and
// moves to the next one only when a transport fails to deliver.
type Chain struct {
	mu         sync.RWMutex
	transports []Transport
	logger     zerolog.Logger
	metrics    *metrics
}

// NewChain creates a chain trying transports in the given order.
func NewChain(transports []Transport, opts ...Option) *Chain {
	options := applyOptions(opts)
	return &Chain{
		transports: slices.Clone(transports),
		logger:     options.Logger,
		metrics:    newMetrics(options.Registerer),
	}
}

// Append adds transport to the tail of the chain.
func (c *Chain) Append(t Transport) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transports = append(c.transports, t)
	return c
}

func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.transports)
}

// Transports returns transports in failover order.
func (c *Chain) Transports() []Transport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.transports)
}

// Deliver sends batch through the first transport able to deliver it. When
// every transport fails the error of the last one is returned.
func (c *Chain) Deliver(ctx context.Context, batch *BatchRequest) (RawReply, error) {
	transports := c.Transports()
	if len(transports) == 0 {
		return nil, ErrNoTransports
	}

	var lastErr error
	for i, t := range transports {
		started := time.Now()
		reply, err := t.Deliver(ctx, batch)
		c.metrics.observe(started, t.Name(), err)
		if err == nil {
			c.logger.Debug().Str("transport", t.Name()).Int("requests", batch.Len()).Msg("batch delivered")
			return reply, nil
		}

		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		lastErr = err
		if i < len(transports)-1 {
			c.metrics.failover(t.Name())
			c.logger.Warn().Err(err).Str("transport", t.Name()).Str("next", transports[i+1].Name()).Msg("delivery failed, trying next transport")
		}
	}
	return nil, lastErr
}

// Close closes all transports of the chain.
func (c *Chain) Close() error {
	var errs []error
	for _, t := range c.Transports() {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
