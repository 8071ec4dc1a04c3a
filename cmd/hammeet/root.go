package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hamvadakara/hammeet/internal/config"
	"github.com/hamvadakara/hammeet/pkg/logging"
)

// app carries what PersistentPreRunE resolved to the subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg    config.Config
	logger logging.Logger
}

func newRootCmd(version string) *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "hammeet",
		Short: "HAM MEET Vadakara registration site",
		Long: `hammeet serves the HAM MEET Vadakara 2026 registration site and
can run the same registration flow in the terminal.

Settings come from flags, HAMMEET_* environment variables, ./hammeet.yaml
and $XDG_CONFIG_HOME/hammeet/hammeet.yaml, in that order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file to read instead of the default search")
	pf.StringP("log-level", "l", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")

	root.AddCommand(newServeCmd(a, version))
	root.AddCommand(newRegisterCmd(a))
	root.AddCommand(newVersionCmd(version))
	root.CompletionOptions.DisableDefaultCmd = true

	return root
}

func (a *app) load(cmd *cobra.Command) error {
	if err := config.ReadFiles(a.v, a.cfgFile); err != nil {
		return err
	}
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	opts := []logging.LoggerOption{
		logging.WithLevel(level),
		logging.WithOutput(cmd.ErrOrStderr()),
		logging.WithPrefix("hammeet"),
	}
	if cfg.Log.Format == "json" {
		opts = append(opts, logging.WithJSON())
	}

	a.cfg = cfg
	a.logger = logging.NewSlogLogger(opts...)
	logging.SetDefault(a.logger)
	return nil
}
