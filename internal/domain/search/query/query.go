// Package query composes Solr select queries for report searches and fix lookups.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-querystring/query"

	"github.com/kailas-cloud/bumper/internal/domain"
	"github.com/kailas-cloud/bumper/internal/domain/document"
	"github.com/kailas-cloud/bumper/internal/domain/search/filter"
	"github.com/kailas-cloud/bumper/internal/domain/search/request"
)

// Index fields referenced by the query templates.
const (
	fieldFixText    = "fix_t"
	fieldReportText = "report_t"
	responseFormat  = "json"
	matchAll        = "*:*"
)

// Defaults for Config.
const (
	DefaultSortField         = "live_saver"
	DefaultSortOrder         = "desc"
	DefaultLanguageAttribute = "file:*."
	DefaultDatasetAttribute  = "dataset:"
	DefaultFixRows           = 1000
)

// Config holds the tunable parts of the query templates.
type Config struct {
	SortField         string
	SortOrder         string // asc, desc
	LanguageAttribute string
	DatasetAttribute  string
	FixRows           int
}

// DefaultConfig returns the Bumper index layout.
func DefaultConfig() Config {
	return Config{
		SortField:         DefaultSortField,
		SortOrder:         DefaultSortOrder,
		LanguageAttribute: DefaultLanguageAttribute,
		DatasetAttribute:  DefaultDatasetAttribute,
		FixRows:           DefaultFixRows,
	}
}

// selectParams is the wire form of a Solr select request.
type selectParams struct {
	Q     string   `url:"q"`
	FQ    []string `url:"fq,omitempty"`
	Sort  string   `url:"sort"`
	Start *int     `url:"start,omitempty"`
	Rows  *int     `url:"rows,omitempty"`
	WT    string   `url:"wt"`
}

// Composer builds encoded query strings. It is immutable and safe for concurrent use.
type Composer struct {
	cfg Config
}

// New creates a Composer. Empty config fields fall back to DefaultConfig.
func New(cfg Config) (*Composer, error) {
	def := DefaultConfig()
	if cfg.SortField == "" {
		cfg.SortField = def.SortField
	}
	if cfg.SortOrder == "" {
		cfg.SortOrder = def.SortOrder
	}
	if cfg.LanguageAttribute == "" {
		cfg.LanguageAttribute = def.LanguageAttribute
	}
	if cfg.DatasetAttribute == "" {
		cfg.DatasetAttribute = def.DatasetAttribute
	}
	if cfg.FixRows <= 0 {
		cfg.FixRows = def.FixRows
	}
	if cfg.SortOrder != "asc" && cfg.SortOrder != "desc" {
		return nil, fmt.Errorf("%w: sort order must be asc or desc, got %q", domain.ErrMalformedParams, cfg.SortOrder)
	}
	if strings.ContainsAny(cfg.SortField, " \t,") {
		return nil, fmt.Errorf("%w: invalid sort field %q", domain.ErrMalformedParams, cfg.SortField)
	}
	return &Composer{cfg: cfg}, nil
}

// Config returns the effective configuration.
func (c *Composer) Config() Config { return c.cfg }

// FixRows returns the row window of fix queries.
func (c *Composer) FixRows() int { return c.cfg.FixRows }

// LanguageFacet builds the file-extension facet for the given languages.
func (c *Composer) LanguageFacet(languages []string) (filter.Spec, error) {
	return filter.NewSpec(c.cfg.LanguageAttribute, languages)
}

// DatasetFacet builds the dataset facet for the given dataset identifiers.
func (c *Composer) DatasetFacet(datasets []string) (filter.Spec, error) {
	return filter.NewSpec(c.cfg.DatasetAttribute, datasets)
}

// Search returns the encoded select query for a report search.
func (c *Composer) Search(p *request.Params) string {
	return c.SearchValues(p).Encode()
}

// SearchValues returns the select parameters for a report search.
func (c *Composer) SearchValues(p *request.Params) url.Values {
	start, rows := p.Start(), p.Rows()
	return encode(selectParams{
		Q:     c.searchExpression(p),
		Sort:  c.cfg.SortField + " " + c.cfg.SortOrder,
		Start: &start,
		Rows:  &rows,
		WT:    responseFormat,
	})
}

// searchExpression renders q. The advanced template is the raw text;
// the standard one matches fixes through a join on parent_bug and bug reports by text and facets.
func (c *Composer) searchExpression(p *request.Params) string {
	if p.Advanced() {
		return p.Query()
	}

	quoted := "'" + p.Query() + "'"
	bug := []string{fmt.Sprintf("%s:%q", document.FieldType, document.TypeBug), "AND", fieldReportText + ":" + quoted}
	for _, f := range p.Facets() {
		if clause := f.Clause(); clause != "" {
			bug = append(bug, clause)
		}
	}

	return fmt.Sprintf("({!join from=%s to=%s}%s:%s) OR (%s)",
		document.FieldParentBug, document.FieldID, fieldFixText, quoted, strings.Join(bug, " "))
}

// Fixes returns the encoded select query for the changeset and hunks of a report.
// The id is substituted as-is.
func (c *Composer) Fixes(recordID string) string {
	return c.FixesValues(recordID).Encode()
}

// FixesValues returns the select parameters for a fix lookup.
// type ascending puts the CHANGESET document before the HUNKS documents.
func (c *Composer) FixesValues(recordID string) url.Values {
	rows := c.cfg.FixRows
	return encode(selectParams{
		Q: matchAll,
		FQ: []string{
			document.FieldParentBug + ":" + recordID,
			fmt.Sprintf("%s:(%s OR %s)", document.FieldType, document.TypeChangeset, document.TypeHunks),
		},
		Sort: document.FieldType + " asc",
		Rows: &rows,
		WT:   responseFormat,
	})
}

// ParsePagination extracts start and rows from an encoded search query.
func ParsePagination(encoded string) (start, rows int, err error) {
	v, err := url.ParseQuery(strings.TrimPrefix(encoded, "?"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: parse query: %w", domain.ErrMalformedParams, err)
	}
	start, err = intParam(v, "start")
	if err != nil {
		return 0, 0, err
	}
	rows, err = intParam(v, "rows")
	if err != nil {
		return 0, 0, err
	}
	return start, rows, nil
}

func intParam(v url.Values, key string) (int, error) {
	vals, ok := v[key]
	if !ok || len(vals) == 0 {
		return 0, fmt.Errorf("%w: missing %s", domain.ErrMalformedParams, key)
	}
	if len(vals) > 1 {
		return 0, fmt.Errorf("%w: repeated %s", domain.ErrMalformedParams, key)
	}
	n, err := strconv.Atoi(vals[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", domain.ErrMalformedParams, key, vals[0])
	}
	return n, nil
}

func encode(p selectParams) url.Values {
	v, err := query.Values(p)
	if err != nil {
		// query.Values only rejects non-struct input.
		panic(fmt.Sprintf("encode select params: %v", err))
	}
	return v
}
