package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bumper/internal/domain"
	domreport "github.com/kailas-cloud/bumper/internal/domain/report"
	healthuc "github.com/kailas-cloud/bumper/internal/usecase/health"
	reportuc "github.com/kailas-cloud/bumper/internal/usecase/report"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface over the report and health services.
type Server struct {
	reports       *reportuc.Service
	health        *healthuc.Service
	metrics       http.Handler
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(reports *reportuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		reports: reports,
		health:  health,
		metrics: promhttp.Handler(),
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrMalformedParams, http.StatusBadRequest, ErrorResponseCodeMalformedParams),
		sentinelHandler(domain.ErrInvalidResult, http.StatusBadGateway, ErrorResponseCodeInvalidResult),
		sentinelHandler(domain.ErrTransportFailure, http.StatusBadGateway, ErrorResponseCodeTransportFailure),
		sentinelHandler(domain.ErrFixesAttached, http.StatusConflict, ErrorResponseCodeFixesAttached),
	}
	return s
}

// SearchReports handles GET /api/v1/reports.
func (s *Server) SearchReports(w http.ResponseWriter, r *http.Request, params SearchReportsParams) {
	p, err := s.reports.Prepare(reportuc.Criteria{
		Query:     params.Q,
		Advanced:  derefBool(params.Advanced),
		Start:     derefInt(params.Start),
		Rows:      derefInt(params.Rows),
		Languages: derefStrings(params.Language),
		Datasets:  derefStrings(params.Dataset),
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	reports, err := s.reports.Search(r.Context(), &p)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if derefBool(params.Fixes) {
		if err := s.reports.FetchFixesAll(r.Context(), reports); err != nil {
			s.handleDomainError(w, r, err)
			return
		}
	}

	items := make([]ReportResponse, len(reports))
	for i := range reports {
		items[i] = NewReportResponse(&reports[i])
	}

	writeJSON(w, http.StatusOK, ReportListResponse{
		Items:    items,
		Count:    len(items),
		Start:    p.Start(),
		Rows:     p.Rows(),
		Advanced: p.Advanced(),
	})
}

// GetReportFixes handles GET /api/v1/reports/{id}/fixes.
func (s *Server) GetReportFixes(w http.ResponseWriter, r *http.Request, id string) {
	rep, err := s.reports.Fixes(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewReportResponse(&rep))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a client-facing message without backend internals.
// Parameter errors are the caller's own input and are returned in full.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrMalformedParams) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrInvalidResult,
		domain.ErrTransportFailure,
		domain.ErrFixesAttached,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger.With(zap.String("path", r.URL.Path))
	log.Warn("domain error", zap.Error(err))

	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

// NewReportResponse renders a report for JSON output.
func NewReportResponse(r *domreport.Report) ReportResponse {
	resp := ReportResponse{
		ID:       r.ID(),
		Document: r.Source(),
	}
	if r.HasFixes() {
		resp.Changeset = r.Changeset()
		fixes := make([]map[string]any, len(r.Fixes()))
		for i, h := range r.Fixes() {
			fixes[i] = h
		}
		resp.Fixes = &fixes
	}
	return resp
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefBool(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}

func derefStrings(p *[]string) []string {
	if p == nil {
		return nil
	}
	return *p
}
