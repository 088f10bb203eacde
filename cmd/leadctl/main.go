package main

import (
	"os"

	"github.com/spf13/cobra"

	appconfig "github.com/wolfman30/insurance-leadform/internal/config"
	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

var (
	cfg    *appconfig.Config
	logger *logging.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "leadctl",
		Short:        "Operate the insurance lead form service",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = appconfig.Load()
			level := cfg.LogLevel
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				level = "debug"
			}
			logger = logging.NewWithWriter(level, cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
	root.AddCommand(newServeCmd(), newCheckCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
