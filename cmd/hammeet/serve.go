package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/hamvadakara/hammeet/internal/server"
	"github.com/hamvadakara/hammeet/pkg/logging"
)

func newServeCmd(a *app, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the registration site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if version == "" {
				version = "dev"
			}
			srv, err := server.New(a.cfg,
				server.WithLogger(a.logger),
				server.WithVersion(version),
			)
			if err != nil {
				return err
			}
			if a.cfg.Server.Dev {
				a.logger.Warn("dev mode: websocket origin checks disabled")
			}
			a.logger.Debug("payment gateway",
				logging.Duration("delay", a.cfg.Payment.Delay),
				logging.Int64("fee", a.cfg.Payment.Fee),
			)
			return srv.Run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.String("addr", ":8080", "listen address")
	f.Bool("dev", false, "development mode (accept any websocket origin)")
	f.String("codec", "json", "websocket frame codec: json or msgpack")
	f.Duration("payment-delay", 1500*time.Millisecond, "demo gateway processing time")
	f.Int64("fee", 1000, "registration fee in rupees")
	f.Int("fail-first", 0, "fail the first n demo payments (negative fails all)")

	return cmd
}
