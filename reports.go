package bumper

import (
	"context"
	"fmt"
	"time"

	domreport "github.com/kailas-cloud/bumper/internal/domain/report"
	reportuc "github.com/kailas-cloud/bumper/internal/usecase/report"
)

// Search finds reports matching query. opts may be nil.
func (c *Client) Search(ctx context.Context, query string, opts *SearchOptions) (out []Report, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opSearch, start, out, err, "query", query) }()

	if opts == nil {
		opts = &SearchOptions{}
	}

	p, err := c.reports.Prepare(reportuc.Criteria{
		Query:     query,
		Advanced:  opts.Advanced,
		Start:     opts.Start,
		Rows:      opts.Rows,
		Languages: opts.Languages,
		Datasets:  opts.Datasets,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	found, err := c.reports.Search(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	if opts.WithFixes {
		if err = c.reports.FetchFixesAll(ctx, found); err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
	}

	return fromDomainReports(found), nil
}

// Fixes returns the report with the given id together with its changeset and hunks.
func (c *Client) Fixes(ctx context.Context, id string) (_ Report, err error) {
	start := time.Now()
	var out []Report
	defer func() { c.obs.observe(opFixes, start, out, err, "report_id", id) }()

	r, err := c.reports.Fixes(ctx, id)
	if err != nil {
		return Report{}, fmt.Errorf("fixes: %w", err)
	}
	out = []Report{fromDomainReport(&r)}
	return out[0], nil
}

// FetchFixes fills Changeset and Fixes of every report that has none yet.
// Reports are updated in place; on error none of them are modified.
func (c *Client) FetchFixes(ctx context.Context, reports []Report) (err error) {
	start := time.Now()
	var filled []Report
	defer func() { c.obs.observe(opFetchFixes, start, filled, err, "requested", len(reports)) }()

	pending := make([]domreport.Report, 0, len(reports))
	positions := make([]int, 0, len(reports))
	for i := range reports {
		if reports[i].HasFixes {
			continue
		}
		pending = append(pending, toDomainReport(&reports[i]))
		positions = append(positions, i)
	}
	if len(pending) == 0 {
		return nil
	}

	if err = c.reports.FetchFixesAll(ctx, pending); err != nil {
		return fmt.Errorf("fetch fixes: %w", err)
	}

	filled = make([]Report, len(positions))
	for j, i := range positions {
		fetched := fromDomainReport(&pending[j])
		reports[i].Changeset = fetched.Changeset
		reports[i].Fixes = fetched.Fixes
		reports[i].HasFixes = true
		filled[j] = reports[i]
	}
	return nil
}
