package report

import (
	"fmt"

	"github.com/kailas-cloud/bumper/internal/domain"
	"github.com/kailas-cloud/bumper/internal/domain/document"
)

// Report is a bug report hit with its optionally fetched fixes.
type Report struct {
	id        string
	source    document.Document
	changeset document.Document
	fixes     []document.Document
	attached  bool
}

// FromDocument creates a Report from a search-result document.
// The document shape is not validated; a missing id yields an empty identifier.
func FromDocument(doc document.Document) Report {
	return Report{id: doc.ID(), source: doc}
}

// ID returns the report identifier.
func (r *Report) ID() string { return r.id }

// Source returns the raw search-result document.
func (r *Report) Source() document.Document { return r.source }

// Changeset returns the fetched changeset, nil until fixes are attached.
func (r *Report) Changeset() document.Document { return r.changeset }

// Fixes returns the fetched hunks in backend order, nil until fixes are attached.
func (r *Report) Fixes() []document.Document { return r.fixes }

// HasFixes reports whether AttachFixes has succeeded.
func (r *Report) HasFixes() bool { return r.attached }

// AttachFixes sets the changeset and hunks. It may be called once per report.
func (r *Report) AttachFixes(changeset document.Document, hunks []document.Document) error {
	if r.attached {
		return fmt.Errorf("report %q: %w", r.id, domain.ErrFixesAttached)
	}
	if hunks == nil {
		hunks = []document.Document{}
	}
	r.changeset = changeset
	r.fixes = hunks
	r.attached = true
	return nil
}
