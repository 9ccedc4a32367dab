package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Dleifnesor/PAW/internal/render"
)

// NewHistoryCmd shows or clears the command history.
func NewHistoryCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear previously suggested commands",
	}
	cmd.AddCommand(newHistoryListCmd(opts), newHistoryClearCmd(opts))
	return cmd
}

func newHistoryListCmd(opts *Options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent commands, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			log := a.history()
			if log == nil {
				return a.out.Notice(render.LevelInfo, "history is disabled (history.enabled: false)")
			}
			entries, err := log.List(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return a.out.Notice(render.LevelInfo, "no history yet")
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tTOOL\tRAN\tCOMMAND")
			for _, e := range entries {
				ran := "-"
				if e.Executed && e.ExitCode != nil {
					ran = "exit " + strconv.Itoa(*e.ExitCode)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Time.Local().Format("2006-01-02 15:04"), e.Tool, ran, e.Command)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show (0 for all)")
	return cmd
}

func newHistoryClearCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the history file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			log := a.history()
			if log == nil {
				return a.out.Notice(render.LevelInfo, "history is disabled (history.enabled: false)")
			}
			if err := log.Clear(); err != nil {
				return err
			}
			return a.out.Notice(render.LevelSuccess, "history cleared")
		},
	}
}
