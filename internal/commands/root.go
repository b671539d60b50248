// Package commands provides the minegen command-line interface.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"minecraft-codegen/internal/app"
	"minecraft-codegen/internal/config"
)

// Version info (set at build time)
var Version = "0.1.0"

type rootOptions struct {
	historyFile string
	app         *app.App
}

// NewRootCmd builds the command tree. Every subcommand shares one
// bootstrapped App created before it runs.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "minegen",
		Short: "Generate Minecraft code from the command line",
		Long: `minegen generates code for Minecraft mods, scripts, datapacks and worlds
with an LLM and keeps every exchange in the shared history file.

Examples:
  minegen generate "мод на новый меч"
  echo "скрипт для автоматической фермы" | minegen generate
  minegen history --limit 5
  minegen stats --json
  minegen backup --dir data/backups
  minegen mcp`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Parse()
			if err != nil {
				return fmt.Errorf("failed to parse config: %w", err)
			}
			if opts.historyFile != "" {
				cfg.HistoryFilePath = opts.historyFile
			}
			a, err := app.Bootstrap(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			opts.app = a
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.historyFile, "history-file", "", "History file (overrides HISTORY_FILE_PATH)")

	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newHistoryCmd(opts))
	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newBackupCmd(opts))
	rootCmd.AddCommand(newMCPCmd(opts))
	return rootCmd
}

// Execute runs the root command
func Execute() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
