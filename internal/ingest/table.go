// Package ingest turns uploaded expense tables into a cleaned transaction set.
//
// Readers (CSV, XLSX, Google Sheets) only produce a raw Table of strings;
// Normalize applies the column contract and the row-level cleaning rules.
package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"finbot/internal/core"
)

// Required column names. Matching is case-sensitive.
const (
	ColDate     = "Date"
	ColCategory = "Category"
	ColAmount   = "Amount"
)

// Format identifies where a table came from.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatSheets Format = "sheets"
)

// HasSerialDates reports whether bare numbers in the date column are
// spreadsheet serial dates.
func (f Format) HasSerialDates() bool {
	return f == FormatXLSX || f == FormatSheets
}

// Table is a header row plus data rows, all as raw cell text.
type Table struct {
	Source string
	Format Format
	Header []string
	Rows   [][]string
}

// DetectFormat maps a file name to a Format by extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q (expected .csv or .xlsx)", core.ErrUnsupportedFormat, name)
	}
}

// ReadTable reads r according to the extension of name.
func ReadTable(ctx context.Context, name string, r io.Reader) (Table, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return Table{}, err
	}
	var t Table
	switch format {
	case FormatCSV:
		t, err = ReadCSV(r)
	case FormatXLSX:
		t, err = ReadXLSX(r)
	}
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", name, err)
	}
	t.Source = name
	return t, nil
}

// columns resolves the required header positions.
func (t Table) columns() (date, category, amount int, err error) {
	index := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	var missing []string
	for _, name := range []string{ColDate, ColCategory, ColAmount} {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return 0, 0, 0, fmt.Errorf("%w: %s", core.ErrMissingColumns, strings.Join(missing, ", "))
	}
	return index[ColDate], index[ColCategory], index[ColAmount], nil
}

// safeGet retrieves row[index] safely.
func safeGet(row []string, index int) string {
	if index < len(row) {
		return row[index]
	}
	return ""
}
