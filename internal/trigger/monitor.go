package trigger

import (
	"context"

	"go.uber.org/zap"
)

// Recorder writes monitoring entries. Exactly one entry is written per
// trigger attempt that reaches event context; a write failure is
// logged and never changes the outcome the pipeline already decided,
// so Record returns nothing.
type Recorder struct {
	store MonitoringStore
	log   *zap.Logger
}

func NewRecorder(store MonitoringStore, log *zap.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

// Record persists one entry. A failed entry without an error message
// is a programmer error: it is rejected here (DPanic, so it panics in
// development and logs in production) and nothing is written.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if e.Status == StatusFailed && e.Error == "" {
		r.log.DPanic("monitoring entry marked failed without an error message",
			zap.String("owner_id", e.OwnerID),
			zap.Uint("event_id", e.EventID))
		return
	}
	if e.Status == StatusSent {
		e.Error = ""
	}

	if err := r.store.RecordMonitoring(ctx, e); err != nil {
		r.log.Error("failed to write monitoring entry",
			zap.Error(err),
			zap.String("owner_id", e.OwnerID),
			zap.Uint("event_id", e.EventID),
			zap.String("status", e.Status))
		return
	}

	r.log.Info("monitoring entry created",
		zap.String("owner_id", e.OwnerID),
		zap.Uint("event_id", e.EventID),
		zap.String("status", e.Status),
		zap.String("entry_error", e.Error))
}
