package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wolfman30/insurance-leadform/cmd/mainconfig"
	"github.com/wolfman30/insurance-leadform/internal/app/bootstrap"
)

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the lead form HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				cfg.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
			if err != nil {
				return fmt.Errorf("load aws config: %w", err)
			}
			app, err := bootstrap.Build(ctx, cfg, bootstrap.Options{Logger: logger, AWS: awsCfg})
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Serve(ctx, ":"+cfg.Port, cfg.RemoteWriteTimeout)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}
