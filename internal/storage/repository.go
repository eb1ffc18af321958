// Package storage archives report summaries in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"finbot/internal/core"
	applog "finbot/internal/log"
)

// DefaultListLimit applies when ListReports is called with a non-positive limit.
const DefaultListLimit = 20

// MaxListLimit caps a single page of reports.
const MaxListLimit = 500

// timeLayout has a fixed width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ReportRepository is the SQLite report archive.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository opens (creating if needed) the database at dbPath and
// migrates it.
func NewReportRepository(dbPath string) (*ReportRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &ReportRepository{db: db}, nil
}

func (r *ReportRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database is reachable.
func (r *ReportRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const insertReport = `
INSERT OR IGNORE INTO reports (
    id, created_at, source, budget, spend_metric, spend_basis, remaining,
    months_detected, avoid_count, okay_count, goal_label, goal_feasible,
    dropped_rows, explanation_source
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SaveReport stores a report. Saving an ID twice keeps the first copy, so
// redelivered messages are harmless.
func (r *ReportRepository) SaveReport(ctx context.Context, rep core.Report) error {
	if rep.ID == "" {
		return fmt.Errorf("save report: missing id")
	}
	var feasible sql.NullBool
	if rep.GoalFeasible != nil {
		feasible = sql.NullBool{Bool: *rep.GoalFeasible, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, insertReport,
		rep.ID,
		rep.CreatedAt.UTC().Format(timeLayout),
		rep.Source,
		rep.Budget.String(),
		rep.SpendMetric.String(),
		string(rep.SpendBasis),
		rep.Remaining.String(),
		rep.MonthsDetected,
		rep.AvoidCount,
		rep.OkayCount,
		rep.GoalLabel,
		feasible,
		rep.DroppedRows,
		rep.ExplanationSource,
	)
	if err != nil {
		return fmt.Errorf("insert report %s: %w", rep.ID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		applog.FromContext(ctx).WithComponent(applog.ComponentStorage).DebugContext(ctx,
			"Report already archived", applog.FieldReportID, rep.ID)
	}
	return nil
}

const selectReports = `
SELECT id, created_at, source, budget, spend_metric, spend_basis, remaining,
       months_detected, avoid_count, okay_count, goal_label, goal_feasible,
       dropped_rows, explanation_source
FROM reports
ORDER BY created_at DESC, id DESC
LIMIT ?`

// ListReports returns the newest reports first.
func (r *ReportRepository) ListReports(ctx context.Context, limit int) ([]core.Report, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := r.db.QueryContext(ctx, selectReports, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := []core.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

// GetReport returns one report or sql.ErrNoRows.
func (r *ReportRepository) GetReport(ctx context.Context, id string) (core.Report, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, created_at, source, budget, spend_metric, spend_basis, remaining,
       months_detected, avoid_count, okay_count, goal_label, goal_feasible,
       dropped_rows, explanation_source
FROM reports WHERE id = ?`, id)
	return scanReport(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (core.Report, error) {
	var (
		rep                              core.Report
		createdAt, budget, spend, remain string
		basis                            string
		feasible                         sql.NullBool
	)
	err := s.Scan(&rep.ID, &createdAt, &rep.Source, &budget, &spend, &basis, &remain,
		&rep.MonthsDetected, &rep.AvoidCount, &rep.OkayCount, &rep.GoalLabel, &feasible,
		&rep.DroppedRows, &rep.ExplanationSource)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Report{}, err
		}
		return core.Report{}, fmt.Errorf("scan report: %w", err)
	}

	if rep.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return core.Report{}, fmt.Errorf("parse created_at of %s: %w", rep.ID, err)
	}
	for _, f := range []struct {
		raw string
		dst *decimal.Decimal
	}{{budget, &rep.Budget}, {spend, &rep.SpendMetric}, {remain, &rep.Remaining}} {
		if *f.dst, err = decimal.NewFromString(f.raw); err != nil {
			return core.Report{}, fmt.Errorf("parse amount of %s: %w", rep.ID, err)
		}
	}
	rep.SpendBasis = core.SpendBasis(basis)
	if feasible.Valid {
		v := feasible.Bool
		rep.GoalFeasible = &v
	}
	return rep, nil
}
