package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newBackupCmd(opts *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Copy the history file into the backup directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = opts.app.Config.BackupDir
			}
			path, err := opts.app.Store.Backup(dir, time.Now())
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to back up: history file does not exist yet")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "History backed up to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Backup directory (default: BACKUP_DIR)")
	return cmd
}
