package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newJSONLogger(buf *bytes.Buffer) *Logger {
	return New(Config{Level: slog.LevelDebug, Component: ComponentApp, JSON: true, Output: buf})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" DEBUG ": slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWithComponentTagsOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf).WithComponent(ComponentIngest)
	logger.WithComponent(ComponentIngest).Info("hello")

	if logger.Component() != ComponentIngest {
		t.Fatalf("component = %q", logger.Component())
	}
	out := buf.String()
	if n := strings.Count(out, `"component"`); n != 2 {
		// one for app, one for ingest; slog keeps both attributes
		t.Fatalf("expected two component attributes, got %d in %s", n, out)
	}
	if !strings.Contains(out, `"component":"ingest"`) {
		t.Errorf("missing ingest component in %s", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf).With(FieldRequestID, "req_1")
	ctx := NewContext(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Fatal("FromContext should return the stored logger")
	}
	if got := FromContext(context.Background()); got == nil || got.Logger == nil {
		t.Fatal("FromContext should fall back to the default logger")
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusUnprocessableEntity, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			sl := NewStructuredLogger(newJSONLogger(&buf))
			r := httptest.NewRequest(http.MethodPost, "/api/analyze?x=1", nil)
			sl.LogHTTPEnd(context.Background(), r, tt.status, 12, "10.0.0.1")

			lines := decodeLines(t, &buf)
			if len(lines) != 1 {
				t.Fatalf("expected one line, got %d", len(lines))
			}
			line := lines[0]
			if line["level"] != tt.level {
				t.Errorf("level = %v, want %s", line["level"], tt.level)
			}
			if line[FieldPath] != "/api/analyze" || line[FieldQuery] != "x=1" {
				t.Errorf("unexpected request fields %v", line)
			}
			if line[FieldSuccess] != (tt.status < 400) {
				t.Errorf("success = %v", line[FieldSuccess])
			}
		})
	}
}

func TestStructuredLoggerAnalysisAndError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newJSONLogger(&buf))

	sl.LogAnalysisCompleted(context.Background(),
		NewFields().WithAnalysis("20000.00", "13000.00", "total", 1, 2).WithGoal("Gadget", false))
	sl.LogError(context.Background(), "archive failed", errors.New("disk full"), OpArchive, nil)

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0][FieldOperation] != OpAnalyze || lines[0][FieldBudget] != "20000.00" || lines[0][FieldFeasible] != false {
		t.Errorf("unexpected analysis line %v", lines[0])
	}
	if lines[1][FieldError] != "disk full" || lines[1][FieldOperation] != OpArchive {
		t.Errorf("unexpected error line %v", lines[1])
	}
}

func TestToSliceIsSorted(t *testing.T) {
	got := NewFields().WithOperation(OpList).WithClientIP("1.2.3.4").ToSlice()
	want := []any{FieldClientIP, "1.2.3.4", FieldOperation, OpList}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
