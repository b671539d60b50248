package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"minecraft-codegen/internal/analytics"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise the generation history",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats := analytics.Analyze(opts.app.History.All())
			if !jsonFlag {
				fmt.Fprintln(cmd.OutOrStdout(), stats.Summary())
				return nil
			}
			data, err := stats.ToJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), data)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print JSON instead of text")
	return cmd
}
