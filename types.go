package bumper

import (
	"github.com/kailas-cloud/bumper/internal/domain/document"
	domreport "github.com/kailas-cloud/bumper/internal/domain/report"
)

// Document is a raw backend document. Numeric fields are json.Number
// holding the backend's exact text.
type Document map[string]any

// Report is a bug report returned by a search.
// Changeset and Fixes are set once fixes were fetched.
type Report struct {
	ID        string
	Document  Document
	Changeset Document
	Fixes     []Document
	HasFixes  bool
}

// SearchOptions configures a report search. The zero value is a standard
// search of the first DefaultRows hits.
type SearchOptions struct {
	// Advanced sends the query verbatim and ignores facets.
	Advanced  bool
	Start     int
	Rows      int
	Languages []string
	Datasets  []string
	// WithFixes fetches the fixes of every hit.
	WithFixes bool
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}

func fromDomainReport(r *domreport.Report) Report {
	out := Report{
		ID:       r.ID(),
		Document: Document(r.Source()),
		HasFixes: r.HasFixes(),
	}
	if r.HasFixes() {
		out.Changeset = Document(r.Changeset())
		out.Fixes = make([]Document, len(r.Fixes()))
		for i, h := range r.Fixes() {
			out.Fixes[i] = Document(h)
		}
	}
	return out
}

func fromDomainReports(reports []domreport.Report) []Report {
	out := make([]Report, len(reports))
	for i := range reports {
		out[i] = fromDomainReport(&reports[i])
	}
	return out
}

// toDomainReport rebuilds a report without fixes so they can be fetched.
func toDomainReport(r *Report) domreport.Report {
	doc := document.Document(r.Document).Clone()
	if doc == nil {
		doc = document.Document{}
	}
	if doc.ID() == "" {
		doc[document.FieldID] = r.ID
	}
	return domreport.FromDocument(doc)
}
