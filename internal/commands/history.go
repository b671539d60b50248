package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent generations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = opts.app.Config.HistoryDisplayLimit
			}
			log := opts.app.History
			recent := log.Recent(limit)
			out := cmd.OutOrStdout()
			if len(recent) == 0 {
				fmt.Fprintln(out, "История пуста")
				return nil
			}
			fmt.Fprintf(out, "💬 История генераций (%d из %d)\n", len(recent), log.Len())
			for i, ex := range recent {
				fmt.Fprintf(out, "\n#%d Запрос: %s\nКод от AI:\n%s\n", i+1, ex.User, ex.AI)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of exchanges to show (default: HISTORY_DISPLAY_LIMIT)")
	return cmd
}
