package cent

import (
	"context"
)

// Publish sends data into channel.
func (c *Client) Publish(ctx context.Context, channel string, data any) (*Response, error) {
	return c.Call(ctx, "publish", map[string]any{"channel": channel, "data": data})
}

// Broadcast sends the same data into many channels.
func (c *Client) Broadcast(ctx context.Context, channels []string, data any) (*Response, error) {
	return c.Call(ctx, "broadcast", map[string]any{"channels": channels, "data": data})
}

// Unsubscribe unsubscribes user from channel.
func (c *Client) Unsubscribe(ctx context.Context, channel, user string) (*Response, error) {
	return c.Call(ctx, "unsubscribe", map[string]any{"channel": channel, "user": user})
}

// Disconnect disconnects user by ID.
func (c *Client) Disconnect(ctx context.Context, user string) (*Response, error) {
	return c.Call(ctx, "disconnect", map[string]any{"user": user})
}

// Presence returns clients currently subscribed to channel.
func (c *Client) Presence(ctx context.Context, channel string) (*Response, error) {
	return c.Call(ctx, "presence", map[string]any{"channel": channel})
}

// PresenceStats returns number of clients and unique users in channel.
func (c *Client) PresenceStats(ctx context.Context, channel string) (*Response, error) {
	return c.Call(ctx, "presence_stats", map[string]any{"channel": channel})
}

type HistoryOptions struct {
	// Limit of publications to return, zero means server default.
	Limit int
	// Reverse iterates from the newest publication.
	Reverse bool
}

// History returns last publications sent into channel.
func (c *Client) History(ctx context.Context, channel string, opts ...HistoryOptions) (*Response, error) {
	params := map[string]any{"channel": channel}
	if len(opts) > 0 {
		if opts[0].Limit > 0 {
			params["limit"] = opts[0].Limit
		}
		if opts[0].Reverse {
			params["reverse"] = true
		}
	}
	return c.Call(ctx, "history", params)
}

// HistoryRemove removes channel history.
func (c *Client) HistoryRemove(ctx context.Context, channel string) (*Response, error) {
	return c.Call(ctx, "history_remove", map[string]any{"channel": channel})
}

// Channels returns active channels, optionally filtered by pattern.
func (c *Client) Channels(ctx context.Context, pattern string) (*Response, error) {
	params := map[string]any{}
	if pattern != "" {
		params["pattern"] = pattern
	}
	return c.Call(ctx, "channels", params)
}

// Info returns information about running server nodes.
func (c *Client) Info(ctx context.Context) (*Response, error) {
	return c.Call(ctx, "info", nil)
}

// Stats returns stats of running server nodes on servers which still
// support the method.
func (c *Client) Stats(ctx context.Context) (*Response, error) {
	return c.Call(ctx, "stats", nil)
}

// Node returns information about the single node serving endpoint.
func (c *Client) Node(ctx context.Context, endpoint string) (*Response, error) {
	req, err := NewRequest(endpoint, c.secret, "node", nil)
	if err != nil {
		return nil, err
	}
	return c.callSingle(ctx, endpoint, req)
}
