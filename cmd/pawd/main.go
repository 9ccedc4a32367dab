package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dleifnesor/PAW/internal/config"
	"github.com/Dleifnesor/PAW/internal/daemon"
	"github.com/Dleifnesor/PAW/internal/logging"
	"github.com/Dleifnesor/PAW/internal/version"
)

func main() {
	var cfgPath string
	var addr string
	var logLevel string

	root := &cobra.Command{
		Use:     "pawd",
		Short:   "PAW daemon: tool registry, resolver and expander over HTTP",
		Version: version.Full(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			logger, err := logging.NewLogger(logLevel, cfg.Logging.Format)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // best-effort

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server, err := daemon.NewServer(ctx, cfg, logger)
			if err != nil {
				return err
			}
			return server.Run(ctx)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "Path to config file (default: configs/config.yaml)")
	root.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	root.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
