package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewResolveCmd lists the ranked candidate tools for a request without expanding them.
func NewResolveCmd(opts *Options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "resolve \"<request>\"",
		Short: "Rank registered tools against a request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.Matches(a.service(reg).Resolve(prompt, limit))
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of candidates (default resolver.top_k)")
	return cmd
}
