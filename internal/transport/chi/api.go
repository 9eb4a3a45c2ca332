package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrorResponseCode is the machine-readable error code of an API error.
type ErrorResponseCode string

// API error codes.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeMalformedParams  ErrorResponseCode = "malformed_params"
	ErrorResponseCodeInvalidResult    ErrorResponseCode = "invalid_result"
	ErrorResponseCodeTransportFailure ErrorResponseCode = "transport_failure"
	ErrorResponseCodeFixesAttached    ErrorResponseCode = "fixes_attached"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// ReportResponse is a report with its fixes when they were fetched.
type ReportResponse struct {
	ID        string            `json:"id"`
	Document  map[string]any    `json:"document"`
	Changeset map[string]any    `json:"changeset,omitempty"`
	Fixes     *[]map[string]any `json:"fixes,omitempty"`
}

// ReportListResponse is the body of a report search.
type ReportListResponse struct {
	Items    []ReportResponse `json:"items"`
	Count    int              `json:"count"`
	Start    int              `json:"start"`
	Rows     int              `json:"rows"`
	Advanced bool             `json:"advanced"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// SearchReportsParams are the query parameters of GET /api/v1/reports.
type SearchReportsParams struct {
	Q        string    `form:"q"`
	Advanced *bool     `form:"advanced,omitempty"`
	Start    *int      `form:"start,omitempty"`
	Rows     *int      `form:"rows,omitempty"`
	Language *[]string `form:"language,omitempty"`
	Dataset  *[]string `form:"dataset,omitempty"`
	Fixes    *bool     `form:"fixes,omitempty"`
}

// ServerInterface is the set of API handlers.
type ServerInterface interface {
	// SearchReports handles GET /api/v1/reports.
	SearchReports(w http.ResponseWriter, r *http.Request, params SearchReportsParams)
	// GetReportFixes handles GET /api/v1/reports/{id}/fixes.
	GetReportFixes(w http.ResponseWriter, r *http.Request, id string)
	// HealthCheck handles GET /health.
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// Metrics handles GET /metrics.
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %v", e.ParamName, e.Err)
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions mounts the API routes on opts.BaseRouter (a new router when nil).
func HandlerWithOptions(si ServerInterface, opts ChiServerOptions) http.Handler {
	r := opts.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if opts.ErrorHandlerFunc == nil {
		opts.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		}
	}

	wrapper := serverInterfaceWrapper{handler: si, errorHandlerFunc: opts.ErrorHandlerFunc}

	r.Get("/api/v1/reports", wrapper.SearchReports)
	r.Get("/api/v1/reports/{id}/fixes", wrapper.GetReportFixes)
	r.Get("/health", si.HealthCheck)
	r.Get("/metrics", si.Metrics)

	return r
}

// serverInterfaceWrapper binds request parameters before calling the handler.
type serverInterfaceWrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *serverInterfaceWrapper) SearchReports(w http.ResponseWriter, r *http.Request) {
	var params SearchReportsParams
	query := r.URL.Query()

	bindings := []struct {
		name     string
		required bool
		dest     any
	}{
		{"q", true, &params.Q},
		{"advanced", false, &params.Advanced},
		{"start", false, &params.Start},
		{"rows", false, &params.Rows},
		{"language", false, &params.Language},
		{"dataset", false, &params.Dataset},
		{"fixes", false, &params.Fixes},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, b.required, b.name, query, b.dest); err != nil {
			siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: b.name, Err: err})
			return
		}
	}

	siw.handler.SearchReports(w, r, params)
}

func (siw *serverInterfaceWrapper) GetReportFixes(w http.ResponseWriter, r *http.Request) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return
	}

	siw.handler.GetReportFixes(w, r, id)
}
