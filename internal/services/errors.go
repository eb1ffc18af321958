package services

import "errors"

// ErrNoReportStore is returned when report history is requested but no
// archive is configured.
var ErrNoReportStore = errors.New("report archive not configured")

// ErrReportNotFound is returned when no archived report has the given ID.
var ErrReportNotFound = errors.New("report not found")
