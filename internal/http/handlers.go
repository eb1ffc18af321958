package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"finbot/internal/ingest"
	applog "finbot/internal/log"
	"finbot/internal/services"
)

// multipartMemory is kept in memory before spilling uploads to disk.
const multipartMemory = 8 << 20

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Payload(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{}
	ready := true
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			ready = false
			status[name] = err.Error()
			continue
		}
		status[name] = "ok"
	}
	if !ready {
		NewJSONResponse().Status(http.StatusServiceUnavailable).Payload(status).Write(w)
		return
	}
	NewJSONResponse().Payload(status).Write(w)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "upload exceeds the size limit").Write(w)
			return
		}
		BadRequestError("expected a multipart form with a file field").Write(w)
		return
	}
	defer r.MultipartForm.RemoveAll()

	form, err := ParseAnalyzeForm(r.MultipartForm.Value)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	file, header, err := r.FormFile(FieldFile)
	if err != nil {
		BadRequestError("missing expense file").Write(w)
		return
	}
	defer file.Close()

	loaded, err := ingest.Load(ctx, sanitizeInput(header.Filename), file)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.analyze(ctx, w, form, loaded)
}

func (s *Server) handleAnalyzeSheet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.sheet == nil {
		ServiceUnavailableError("no spreadsheet is configured").Write(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		BadRequestError("invalid form").Write(w)
		return
	}
	form, err := ParseAnalyzeForm(r.PostForm)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	loaded, err := s.sheet.Load(ctx)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.analyze(ctx, w, form, loaded)
}

func (s *Server) analyze(ctx context.Context, w http.ResponseWriter, form AnalyzeForm, loaded ingest.Result) {
	source := ""
	if len(loaded.Sources) > 0 {
		source = loaded.Sources[0]
	}
	res, err := s.analyzer.Analyze(ctx, services.Request{
		Transactions: loaded.Transactions,
		Budget:       form.Budget,
		Goal:         form.Goal,
		Source:       source,
		DroppedRows:  loaded.Dropped,
	})
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	NewJSONResponse().Payload(NewAnalyzeResponse(loaded, res)).Write(w)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.reports.Enabled() {
		ServiceUnavailableError("report archive is not configured").Write(w)
		return
	}
	reports, err := s.reports.List(ctx, ParseLimit(r.URL.Query()))
	if err != nil {
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Failed to list reports", err, applog.OpList, nil)
		InternalServerError("failed to list reports").Write(w)
		return
	}
	out := ReportsResponse{Reports: make([]ReportDTO, 0, len(reports)), Count: len(reports)}
	for _, rep := range reports {
		out.Reports = append(out.Reports, newReportDTO(rep))
	}
	NewJSONResponse().Payload(out).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.reports.Enabled() {
		ServiceUnavailableError("report archive is not configured").Write(w)
		return
	}
	rep, err := s.reports.Get(ctx, sanitizeInput(chi.URLParam(r, "id")))
	switch {
	case errors.Is(err, services.ErrReportNotFound):
		NotFoundError("report not found").Write(w)
		return
	case err != nil:
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Failed to get report", err, applog.OpList, nil)
		InternalServerError("failed to get report").Write(w)
		return
	}
	NewJSONResponse().Payload(newReportDTO(rep)).Write(w)
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Payload(newGoalsResponse(s.analyzer.Rules())).Write(w)
}

// writeError answers client errors with their message and hides the details
// of anything else.
func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Analysis request failed", err, applog.OpAnalyze, nil)
		InternalServerError("analysis failed").Write(w)
		return
	}
	applog.FromContext(ctx).WarnContext(ctx, "Analysis request rejected",
		applog.FieldError, err.Error(),
		applog.FieldStatusCode, status)
	ErrorResponse(status, err.Error()).Write(w)
}
