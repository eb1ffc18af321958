package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ReadCSV reads a comma-separated table. Short rows are kept; missing cells
// read as empty and are dropped later by Normalize.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{Format: FormatCSV}, nil
		}
		return Table{}, fmt.Errorf("read CSV header: %w", err)
	}

	t := Table{Format: FormatCSV, Header: header}
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Table{}, fmt.Errorf("read CSV record %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, record)
	}
	return t, nil
}
