package request

import (
	"fmt"

	"github.com/kailas-cloud/bumper/internal/domain"
	"github.com/kailas-cloud/bumper/internal/domain/search/filter"
	"github.com/kailas-cloud/bumper/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultRows    = 100
	MaxRows        = 1000
	MaxFacets      = 8
)

// Params is a validated search query.
type Params struct {
	query      string
	searchMode mode.Mode
	start      int
	rows       int
	facets     []filter.Spec
}

// New validates and normalizes search parameters.
// rows=0 means DefaultRows. Facets are ignored by the advanced template.
// An empty query is allowed in standard mode and matches empty text.
func New(query string, m mode.Mode, start, rows int, facets ...filter.Spec) (Params, error) {
	if m == "" {
		m = mode.Standard
	}
	if !m.IsValid() {
		return Params{}, fmt.Errorf("%w: invalid search mode: %q", domain.ErrMalformedParams, m)
	}
	if query == "" && m == mode.Advanced {
		return Params{}, fmt.Errorf("%w: advanced query is required", domain.ErrMalformedParams)
	}
	if len(query) > MaxQueryLength {
		return Params{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrMalformedParams, MaxQueryLength)
	}
	if start < 0 {
		return Params{}, fmt.Errorf("%w: start must be non-negative, got %d", domain.ErrMalformedParams, start)
	}
	if rows < 0 {
		return Params{}, fmt.Errorf("%w: rows must be non-negative, got %d", domain.ErrMalformedParams, rows)
	}
	if rows == 0 {
		rows = DefaultRows
	}
	if rows > MaxRows {
		return Params{}, fmt.Errorf("%w: rows too large (max %d)", domain.ErrMalformedParams, MaxRows)
	}
	if len(facets) > MaxFacets {
		return Params{}, fmt.Errorf("%w: too many facets (max %d)", domain.ErrMalformedParams, MaxFacets)
	}

	return Params{
		query:      query,
		searchMode: m,
		start:      start,
		rows:       rows,
		facets:     append([]filter.Spec(nil), facets...),
	}, nil
}

// Query returns the free-text query.
func (p *Params) Query() string { return p.query }

// Mode returns the query template selector.
func (p *Params) Mode() mode.Mode { return p.searchMode }

// Advanced reports whether the raw query template is used.
func (p *Params) Advanced() bool { return p.searchMode.IsAdvanced() }

// Start returns the pagination offset.
func (p *Params) Start() int { return p.start }

// Rows returns the pagination window size.
func (p *Params) Rows() int { return p.rows }

// Facets returns the facet filters in clause order.
func (p *Params) Facets() []filter.Spec { return p.facets }
