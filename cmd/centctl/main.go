// Command centctl calls Centrifugo server API from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/TheAlpha16/cent-go"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	v          *viper.Viper
	configFile string
	envFile    string
	cfg        cent.Config
	logger     zerolog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{v: cent.NewViper(), logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:          "centctl",
		Short:        "Centrifugo server API client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "path to config file")
	flags.StringVar(&a.envFile, "env-file", "", "load CENT_ environment variables from file")
	flags.StringP("endpoint", "e", "", "Centrifugo HTTP API endpoint")
	flags.StringP("secret", "s", "", "Centrifugo API key")
	flags.String("log-level", "info", "set the log level: trace, debug, info, warn, error or none")

	bindings := map[string]string{
		"endpoint":  "endpoint",
		"secret":    "secret",
		"log.level": "log-level",
	}
	for key, flag := range bindings {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		a.publishCommand(),
		a.broadcastCommand(),
		a.unsubscribeCommand(),
		a.disconnectCommand(),
		a.presenceCommand(),
		a.presenceStatsCommand(),
		a.historyCommand(),
		a.historyRemoveCommand(),
		a.channelsCommand(),
		a.infoCommand(),
		a.callCommand(),
		a.batchCommand(),
		a.genTokenCommand(),
		a.genSubTokenCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.envFile != "" {
		// Variables already present in the environment win.
		if err := godotenv.Load(a.envFile); err != nil {
			return fmt.Errorf("error loading env file: %w", err)
		}
	}
	cfg, err := cent.ReadConfig(a.v, a.configFile)
	if err != nil {
		return err
	}
	if len(cfg.Transports) == 0 {
		cfg.Transports = []cent.TransportConfig{{Type: cent.TransportTypeHTTP}}
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Log.Level)
	a.logger.Debug().Str("endpoint", cfg.Endpoint).Int("transports", len(cfg.Transports)).Msg("config loaded")
	return nil
}

func (a *app) client() (*cent.Client, error) {
	c, err := cent.NewFromConfig(a.cfg, cent.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("error creating client: %w", err)
	}
	return c, nil
}
