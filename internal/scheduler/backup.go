package scheduler

import (
	"context"
	"time"

	"minecraft-codegen/internal/analytics"
	"minecraft-codegen/internal/history"
	"minecraft-codegen/internal/logger"
)

// BackupJobName is the name the history backup is registered under.
const BackupJobName = "history-backup"

type backuper interface {
	Backup(dir string, now time.Time) (string, error)
}

// BackupJob copies the history file into dir and logs a summary of the log.
func BackupJob(store backuper, log *history.Log, dir string, now func() time.Time) Job {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		path, err := store.Backup(dir, now())
		if err != nil {
			return err
		}
		entry := logger.WithComponent("scheduler").WithField("job", BackupJobName)
		if path == "" {
			entry.Info("💾 Nothing to back up yet")
			return nil
		}
		stats := analytics.Analyze(log.All())
		entry.WithFields(logger.Fields{
			"path":      path,
			"exchanges": stats.TotalExchanges,
		}).Info("💾 History backed up")
		entry.Debug(stats.Summary())
		return nil
	}
}
