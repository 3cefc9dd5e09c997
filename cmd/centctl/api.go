package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/TheAlpha16/cent-go"
	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

var errInvalidJSON = errors.New("invalid JSON")

type callFunc func(ctx context.Context, c *cent.Client) (*cent.Response, error)

// runCall creates client, performs call and prints response body.
func (a *app) runCall(cmd *cobra.Command, call callFunc) error {
	c, err := a.client()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	resp, err := call(cmd.Context(), c)
	if err != nil {
		return err
	}
	return printResponse(cmd.OutOrStdout(), resp)
}

func printResponse(w io.Writer, resp *cent.Response) error {
	body := resp.Body()
	if len(body) == 0 {
		body = json.RawMessage("{}")
	}
	_, err := w.Write(pretty.Pretty(body))
	return err
}

func parseJSON(arg string) (json.RawMessage, error) {
	if !gjson.Valid(arg) {
		return nil, fmt.Errorf("%w: %s", errInvalidJSON, arg)
	}
	return json.RawMessage(arg), nil
}

func (a *app) publishCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <channel> <data>",
		Short: "Publish JSON data into channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseJSON(args[1])
			if err != nil {
				return err
			}
			return a.runCall(cmd, func(ctx context.Context, c *cent.Client) (*cent.Response, error) {
				return c.Publish(ctx, args[0], data)
			})
		},
	}
}

func (a *app) broadcastCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "broadcast <data> <channel>...",
		Short: "Publish the same JSON data into many channels",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseJSON(args[0])
			if err != nil {
				return err
			}
			return a.runCall(cmd, func(ctx context.Context, c *cent.Client) (*cent.Response, error) {
				return c.Broadcast(ctx, args[1:], data)
			})
		},
	}
}

func (a *app) unsubscribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe <channel> <user>",
		Short: "Unsubscribe user from channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCall(cmd, func(ctx context.Context, c *cent.Client) (*cent.Response, error) {
				return c.Unsubscribe(ctx, args[0], args[1])
			})
		},
	}
}

func (a *app) disconnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <user>",
		Short: "Disconnect user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCall(cmd, func(ctx context.Context, c *cent.Client) (*cent.Response, error) {
				return c.Disconnect(ctx, args[0])
			})
		},
	}
}

func (a *app) presenceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presence <channel>",
		Short: "Show clients subscribed to channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCall(cmd, func(ctx context.Context, c *cent.Client) (*cent.Response, error) {
				return c.Presence(ctx, args[0])
			})
		},
	}
}

func (a *app) presenceStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presence-stats <channel>",
		Short: "Show number of clients and users in channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCall(cmd, func(ctx context.Context, c *cent.Client) (*cent.Response, error) {
				return c.PresenceStats(ctx, args[0])
			})
		},
	}
}

func (a *app) historyCommand() *cobra.Command {
	var opts cent.HistoryOptions
	cmd := &cobra.Command{
		Use:   "history <channel>",
		Short: "Show channel history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCall(cmd, func(ctx context.Context, c *cent.Client) (*cent.Response, error) {
				return c.History(ctx, args[0], opts)
			})
		},
	}
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 0, "max number of publications, 0 for server default")
	cmd.Flags().BoolVarP(&opts.Reverse, "reverse", "r", false, "start from the newest publication")
	return cmd
}

func (a *app) historyRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history-remove <channel>",
		Short: "Remove channel history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCall(cmd, func(ctx context.Context, c *cent.Client) (*cent.Response, error) {
				return c.HistoryRemove(ctx, args[0])
			})
		},
	}
}

func (a *app) channelsCommand() *cobra.Command {
	var pattern string
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List active channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCall(cmd, func(ctx context.Context, c *cent.Client) (*cent.Response, error) {
				return c.Channels(ctx, pattern)
			})
		},
	}
	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "channel name pattern")
	return cmd
}

func (a *app) infoCommand() *cobra.Command {
	var node string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show information about running nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCall(cmd, func(ctx context.Context, c *cent.Client) (*cent.Response, error) {
				if node != "" {
					return c.Node(ctx, node)
				}
				return c.Info(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&node, "node", "", "ask a single node at this API endpoint")
	return cmd
}

// buildParams sets every path=value assignment on top of base params.
// Values which are not valid JSON are set as strings.
func buildParams(base string, assignments []string) (map[string]any, error) {
	if !gjson.Valid(base) || !gjson.Parse(base).IsObject() {
		return nil, fmt.Errorf("%w: params must be an object", errInvalidJSON)
	}
	raw := []byte(base)
	for _, assignment := range assignments {
		path, value, ok := strings.Cut(assignment, "=")
		if !ok || path == "" {
			return nil, fmt.Errorf("param %q is not path=value", assignment)
		}
		var err error
		if gjson.Valid(value) {
			raw, err = sjson.SetRawBytes(raw, path, []byte(value))
		} else {
			raw, err = sjson.SetBytes(raw, path, value)
		}
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", assignment, err)
		}
	}
	var params map[string]any
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	return params, nil
}

func (a *app) callCommand() *cobra.Command {
	var base string
	var assignments []string
	cmd := &cobra.Command{
		Use:   "call <method>",
		Short: "Call any API method",
		Example: `  centctl call publish --param channel=news --param data.text=hello
  centctl call history --params '{"channel":"news","limit":10}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := buildParams(base, assignments)
			if err != nil {
				return err
			}
			return a.runCall(cmd, func(ctx context.Context, c *cent.Client) (*cent.Response, error) {
				return c.Call(ctx, args[0], params)
			})
		},
	}
	cmd.Flags().StringVar(&base, "params", "{}", "params JSON object")
	cmd.Flags().StringArrayVarP(&assignments, "param", "p", nil, "set param at path, may be repeated")
	return cmd
}

func (a *app) batchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Send JSON array of {method, params} commands read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			var commands []cent.Command
			if err := json.Unmarshal(input, &commands); err != nil {
				return fmt.Errorf("%w: %w", errInvalidJSON, err)
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			requests := make([]cent.Request, 0, len(commands))
			for _, command := range commands {
				req, err := c.Request(command.Method, command.Params)
				if err != nil {
					return err
				}
				requests = append(requests, req)
			}

			br, err := c.CallBatch(cmd.Context(), requests)
			if err != nil {
				return err
			}
			return printBatch(cmd.OutOrStdout(), br)
		},
	}
}

func printBatch(w io.Writer, br *cent.BatchResponse) error {
	for i, req := range br.Request().All() {
		resp, ok := br.At(i)
		switch {
		case !ok:
			_, _ = fmt.Fprintf(w, "%d %s: no response\n", i, req.Method())
		case resp.IsError():
			_, _ = fmt.Fprintf(w, "%d %s: error: %s\n", i, req.Method(), resp.ErrorMessage())
		default:
			body := resp.Body()
			if len(body) == 0 {
				body = json.RawMessage("{}")
			}
			_, _ = fmt.Fprintf(w, "%d %s: %s\n", i, req.Method(), pretty.Ugly(body))
		}
	}
	return br.Err()
}
