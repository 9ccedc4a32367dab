package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dleifnesor/PAW/internal/llm/configbuilder"
)

const listModelsTimeout = 15 * time.Second

// NewModelsCmd lists the models each configured runtime serves.
func NewModelsCmd(opts *Options) *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models available on the configured model runtimes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			reg, err := configbuilder.BuildRegistryFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("build providers: %w", err)
			}

			names := reg.ProviderNames()
			if provider != "" {
				if _, ok := reg.Provider(provider); !ok {
					return fmt.Errorf("provider %q is not configured", provider)
				}
				names = []string{provider}
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no providers configured")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PROVIDER\tMODEL\tSIZE")
			var failed int
			for _, name := range names {
				p, _ := reg.Provider(name)
				ctx, cancel := context.WithTimeout(cmd.Context(), listModelsTimeout)
				models, err := p.ListModels(ctx)
				cancel()
				if err != nil {
					failed++
					fmt.Fprintf(tw, "%s\t(unreachable: %v)\t\n", name, err)
					continue
				}
				for _, m := range models {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", name, m.Name, humanSize(m.Size))
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if failed == len(names) {
				return fmt.Errorf("no model runtime reachable")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Only query this provider")
	return cmd
}

func humanSize(n int64) string {
	if n <= 0 {
		return "-"
	}
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
