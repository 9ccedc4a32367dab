package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dleifnesor/PAW/internal/store"
)

// NewDoctorCmd returns a health-check command validating config and environment.
func NewDoctorCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration and the registry file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()
			cfg := a.cfg

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config OK. Providers: %d, models: %d\n", len(cfg.Providers), len(cfg.Models))

			switch reg, err := a.store.Load(cmd.Context()); {
			case err == nil && !a.store.Exists():
				fmt.Fprintf(out, "Registry: %s (not created yet, seed on first use: %v)\n", a.store.Path(), cfg.Registry.SeedOnEmpty)
			case err == nil:
				fmt.Fprintf(out, "Registry: %s (%d tools, %d categories)\n", a.store.Path(), reg.Len(), len(reg.AllCategories()))
			default:
				var corrupt *store.CorruptStoreError
				if errors.As(err, &corrupt) {
					fmt.Fprintf(out, "Registry: %s is corrupt, run 'paw tools reset --seed'\n", a.store.Path())
				}
				return fmt.Errorf("registry check failed: %w", err)
			}

			fmt.Fprintf(out, "Explain: %v, runner: %v, history: %v, metrics: %v\n",
				cfg.Explain.Enabled, cfg.Runner.Enabled, cfg.History.Enabled, cfg.Server.MetricsEnabled)
			return nil
		},
	}
}
