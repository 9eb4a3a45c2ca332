package result

import "github.com/kailas-cloud/bumper/internal/domain/document"

// Result is a decoded select response: the returned page of documents
// and the backend-reported total count, kept as text.
type Result struct {
	docs     []document.Document
	numFound string
}

// New creates a select result.
func New(docs []document.Document, numFound string) Result {
	return Result{docs: docs, numFound: numFound}
}

// Docs returns the documents in backend order.
func (r *Result) Docs() []document.Document { return r.docs }

// NumFound returns the total count as reported by the backend.
func (r *Result) NumFound() string { return r.numFound }
