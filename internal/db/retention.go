package db

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runMonitoringRetentionOnce performs a single pass of retention
// cleanup, deleting monitoring entries created before the cutoff.
func runMonitoringRetentionOnce(db *gorm.DB, retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return db.Where("created_at < ?", cutoff).Delete(&MonitoringEntry{}).Error
}

// StartMonitoringRetentionWorker launches a background goroutine that
// runs the retention cleanup once at startup and then once per day.
// retentionDays <= 0 disables the worker; entries are kept forever.
func StartMonitoringRetentionWorker(db *gorm.DB, retentionDays int, log *zap.Logger) {
	if retentionDays <= 0 {
		return
	}

	go func() {
		if err := runMonitoringRetentionOnce(db, retentionDays); err != nil {
			log.Error("monitoring retention cleanup error (startup)", zap.Error(err))
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := runMonitoringRetentionOnce(db, retentionDays); err != nil {
				log.Error("monitoring retention cleanup error", zap.Error(err))
			}
		}
	}()
}
