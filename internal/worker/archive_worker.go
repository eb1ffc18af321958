// Package worker archives report events delivered over AMQP.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"finbot/internal/amqp"
	"finbot/internal/core"
	applog "finbot/internal/log"
)

// ReportSaver persists reports. Saving the same ID twice must be harmless.
type ReportSaver interface {
	SaveReport(ctx context.Context, r core.Report) error
}

// Stats counts handled messages.
type Stats struct {
	Archived int64
	Failed   int64
}

// ArchiveWorker stores every report.created event it receives.
type ArchiveWorker struct {
	store    ReportSaver
	archived atomic.Int64
	failed   atomic.Int64
}

func NewArchiveWorker(store ReportSaver) *ArchiveWorker {
	return &ArchiveWorker{store: store}
}

// HandleReportCreated saves the report carried by msg. An error makes the
// broker redeliver the message.
func (w *ArchiveWorker) HandleReportCreated(ctx context.Context, msg *amqp.ReportCreatedMessage) error {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentWorker)

	r := msg.Report
	if r.CreatedAt.IsZero() {
		r.CreatedAt = msg.Timestamp
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	if err := w.store.SaveReport(ctx, r); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("archive report %s: %w", r.ID, err)
	}
	w.archived.Add(1)

	logger.InfoContext(ctx, "Report archived",
		applog.FieldReportID, r.ID,
		applog.FieldSource, r.Source,
		applog.FieldOperation, applog.OpArchive)
	return nil
}

// Stats returns the counters since start.
func (w *ArchiveWorker) Stats() Stats {
	return Stats{Archived: w.archived.Load(), Failed: w.failed.Load()}
}

// ReportStats logs the counters every interval until ctx is done.
func (w *ArchiveWorker) ReportStats(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentWorker)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := w.Stats()
			logger.InfoContext(ctx, "Archive worker stats", "archived", s.Archived, "failed", s.Failed)
		}
	}
}
