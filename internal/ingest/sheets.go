package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	applog "finbot/internal/log"
)

// valuesGetter is the slice of the Sheets API the source needs.
type valuesGetter interface {
	Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
}

// SheetsSource reads an expense table from a Google Sheets range. Cells are
// requested unformatted, so amounts arrive as plain numbers and dates as
// serial numbers unless they were typed as text.
type SheetsSource struct {
	values        valuesGetter
	spreadsheetID string
	rangeName     string
}

type apiValues struct {
	svc *gsheet.Service
}

func (a apiValues) Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := a.svc.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// NewSheetsSource creates a read-only Sheets source using Service Account
// credentials given inline or as a file path.
func NewSheetsSource(ctx context.Context, spreadsheetID, rangeName, credentialsJSON, credentialsFile string) (*SheetsSource, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(rangeName) == "" {
		rangeName = "Expenses"
	}

	var creds []byte
	switch {
	case credentialsJSON != "":
		creds = []byte(credentialsJSON)
	case credentialsFile != "":
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		creds = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return newSheetsSource(ctx, apiValues{svc: svc}, spreadsheetID, rangeName), nil
}

func newSheetsSource(ctx context.Context, values valuesGetter, spreadsheetID, rangeName string) *SheetsSource {
	applog.FromContext(ctx).WithComponent(applog.ComponentIngest).InfoContext(ctx, "Google Sheets source ready",
		"spreadsheet_id", spreadsheetID,
		"range", rangeName)
	return &SheetsSource{values: values, spreadsheetID: spreadsheetID, rangeName: rangeName}
}

// Name identifies the source in logs and reports.
func (s *SheetsSource) Name() string {
	return fmt.Sprintf("sheets:%s!%s", s.spreadsheetID, s.rangeName)
}

// Fetch reads the range into a Table. The first row is the header.
func (s *SheetsSource) Fetch(ctx context.Context) (Table, error) {
	values, err := s.values.Get(ctx, s.spreadsheetID, s.rangeName)
	if err != nil {
		return Table{}, fmt.Errorf("get values %s: %w", s.rangeName, err)
	}
	t := valuesToTable(values)
	t.Source = s.Name()
	return t, nil
}

// Load fetches and normalizes the range.
func (s *SheetsSource) Load(ctx context.Context) (Result, error) {
	t, err := s.Fetch(ctx)
	if err != nil {
		return Result{}, err
	}
	return Normalize(ctx, t)
}

func valuesToTable(values [][]interface{}) Table {
	t := Table{Format: FormatSheets}
	if len(values) == 0 {
		return t
	}
	t.Header = toStrings(values[0])
	for _, row := range values[1:] {
		t.Rows = append(t.Rows, toStrings(row))
	}
	return t
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}
