package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/TheAlpha16/cent-go"
	"github.com/spf13/cobra"
)

type tokenFlags struct {
	user  string
	ttl   int64
	info  string
	quiet bool
}

func (f *tokenFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.user, "user", "u", "", "user ID, by default anonymous")
	cmd.Flags().Int64VarP(&f.ttl, "ttl", "t", 3600*24*7, "token TTL in seconds, use -1 for token without expiration")
	cmd.Flags().StringVarP(&f.info, "info", "i", "", "connection info JSON")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "only output the token without anything else")
}

func (f *tokenFlags) exp() time.Time {
	if f.ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(time.Duration(f.ttl) * time.Second)
}

func (f *tokenFlags) infoValue() (any, error) {
	if f.info == "" {
		return nil, nil
	}
	raw, err := parseJSON(f.info)
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

func (f *tokenFlags) print(w io.Writer, token, subject string) {
	if f.quiet {
		_, _ = fmt.Fprint(w, token)
		return
	}
	user := fmt.Sprintf("user %q", f.user)
	if f.user == "" {
		user = "anonymous user"
	}
	exp := "without expiration"
	if f.ttl > 0 {
		exp = fmt.Sprintf("with expiration TTL %s", time.Duration(f.ttl)*time.Second)
	}
	_, _ = fmt.Fprintf(w, "HMAC SHA-256 JWT for %s%s %s:\n%s\n", user, subject, exp, token)
}

func (a *app) genTokenCommand() *cobra.Command {
	var flags tokenFlags
	cmd := &cobra.Command{
		Use:   "gentoken",
		Short: "Generate connection JWT for user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := flags.infoValue()
			if err != nil {
				return err
			}
			token, err := cent.GenerateConnectionToken(a.cfg.Secret, flags.user, flags.exp(), info)
			if err != nil {
				return err
			}
			flags.print(cmd.OutOrStdout(), token, "")
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) genSubTokenCommand() *cobra.Command {
	var flags tokenFlags
	var channel string
	cmd := &cobra.Command{
		Use:   "gensubtoken",
		Short: "Generate subscription JWT for user and channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if channel == "" {
				return errors.New("channel is required")
			}
			info, err := flags.infoValue()
			if err != nil {
				return err
			}
			token, err := cent.GenerateSubscriptionToken(a.cfg.Secret, flags.user, channel, flags.exp(), info)
			if err != nil {
				return err
			}
			flags.print(cmd.OutOrStdout(), token, fmt.Sprintf(" and channel %q", channel))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&channel, "channel", "n", "", "channel to generate token for")
	return cmd
}
