// Package cli implements the paw command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dleifnesor/PAW/internal/config"
	"github.com/Dleifnesor/PAW/internal/version"
)

// Options holds global CLI options.
type Options struct {
	ConfigPath string
	Renderer   string
	Theme      string
	LogLevel   string
}

// NewRootCmd constructs the base CLI command tree.
func NewRootCmd() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:           "paw",
		Short:         "PAW – find the right security tool and build its command line",
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "Path to config file (default: configs/config.yaml)")
	flags.StringVar(&opts.Renderer, "output", "", "Output style: auto, plain or enhanced (overrides output.renderer)")
	flags.StringVar(&opts.Theme, "theme", "", "Theme for enhanced output: cyberpunk, hacker or dracula")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level (overrides logging.level)")

	cmd.AddCommand(NewAskCmd(opts))
	cmd.AddCommand(NewResolveCmd(opts))
	cmd.AddCommand(NewToolsCmd(opts))
	cmd.AddCommand(NewModelsCmd(opts))
	cmd.AddCommand(NewHistoryCmd(opts))
	cmd.AddCommand(NewDoctorCmd(opts))
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig wraps config loading with shared options.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.Renderer != "" {
		cfg.Output.Renderer = opts.Renderer
	}
	if opts.Theme != "" {
		cfg.Output.Theme = opts.Theme
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
