package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finbot/internal/core"
	applog "finbot/internal/log"
)

// ReportStore persists report summaries.
type ReportStore interface {
	SaveReport(ctx context.Context, r core.Report) error
	ListReports(ctx context.Context, limit int) ([]core.Report, error)
	GetReport(ctx context.Context, id string) (core.Report, error)
}

// ReportPublisher announces a new report to other processes.
type ReportPublisher interface {
	PublishReportCreated(ctx context.Context, r core.Report) error
}

// ReportService archives reports locally and publishes them. Either side may
// be nil.
type ReportService struct {
	store     ReportStore
	publisher ReportPublisher
}

func NewReportService(store ReportStore, publisher ReportPublisher) *ReportService {
	return &ReportService{store: store, publisher: publisher}
}

// Record saves the report first, then publishes it. A publish failure is
// logged and does not fail the call once the report is saved.
func (s *ReportService) Record(ctx context.Context, r core.Report) error {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentStorage)

	if s.store != nil {
		if err := s.store.SaveReport(ctx, r); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
	} else {
		logger.DebugContext(ctx, "Report store not configured, skipping local save", applog.FieldReportID, r.ID)
	}

	if s.publisher == nil {
		if s.store == nil {
			logger.WarnContext(ctx, "No report store or publisher configured, report dropped", applog.FieldReportID, r.ID)
		}
		return nil
	}
	if err := s.publisher.PublishReportCreated(ctx, r); err != nil {
		if s.store == nil {
			return fmt.Errorf("publish report: %w", err)
		}
		logger.ErrorContext(ctx, "Failed to publish report", applog.FieldReportID, r.ID, applog.FieldError, err)
	}
	return nil
}

// List returns the latest reports, newest first.
func (s *ReportService) List(ctx context.Context, limit int) ([]core.Report, error) {
	if s.store == nil {
		return nil, ErrNoReportStore
	}
	return s.store.ListReports(ctx, limit)
}

// Get returns one archived report. A missing ID yields ErrReportNotFound.
func (s *ReportService) Get(ctx context.Context, id string) (core.Report, error) {
	if s.store == nil {
		return core.Report{}, ErrNoReportStore
	}
	r, err := s.store.GetReport(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Report{}, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	return r, err
}

// Enabled reports whether reports can be listed.
func (s *ReportService) Enabled() bool {
	return s != nil && s.store != nil
}
