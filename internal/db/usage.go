package db

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pingrelay/internal/trigger"
)

// runUsageAggregationOnce recomputes the UsageBucket row for every
// (owner, event) pair with monitoring entries on the given day.
// Call with dayStart = a time in UTC truncated to midnight.
func runUsageAggregationOnce(db *gorm.DB, dayStart time.Time) error {
	dayEnd := dayStart.AddDate(0, 0, 1)

	var entries []MonitoringEntry
	if err := db.Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
		Select("user_id", "event_id", "status").
		Find(&entries).Error; err != nil {
		return err
	}

	type key struct {
		UserID  string
		EventID uint
	}
	type counts struct {
		sent   int64
		failed int64
	}
	groups := make(map[key]*counts)
	for _, e := range entries {
		k := key{UserID: e.UserID, EventID: e.EventID}
		c := groups[k]
		if c == nil {
			c = &counts{}
			groups[k] = c
		}
		if e.Status == trigger.StatusSent {
			c.sent++
		} else {
			c.failed++
		}
	}

	for k, c := range groups {
		row := UsageBucket{
			UserID:      k.UserID,
			EventID:     k.EventID,
			DayStart:    dayStart,
			SentCount:   c.sent,
			FailedCount: c.failed,
		}
		var existing UsageBucket
		err := db.Where("user_id = ? AND event_id = ? AND day_start = ?", k.UserID, k.EventID, dayStart).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			err = db.Create(&row).Error
		} else if err == nil {
			err = db.Model(&existing).Updates(map[string]interface{}{
				"sent_count":   row.SentCount,
				"failed_count": row.FailedCount,
			}).Error
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// StartUsageWorker recomputes usage buckets for the current and
// previous UTC day at startup and then every hour. Hourly reruns keep
// the current day's bucket fresh as entries arrive.
func StartUsageWorker(db *gorm.DB, log *zap.Logger) {
	runBoth := func(now time.Time) {
		today := now.UTC().Truncate(24 * time.Hour)
		for _, dayStart := range []time.Time{today.AddDate(0, 0, -1), today} {
			if err := runUsageAggregationOnce(db, dayStart); err != nil {
				log.Error("usage aggregation error",
					zap.Time("day_start", dayStart),
					zap.Error(err))
			}
		}
	}

	go func() {
		runBoth(time.Now())

		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for t := range ticker.C {
			runBoth(t)
		}
	}()
}
