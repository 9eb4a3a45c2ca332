package report

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/bumper/internal/domain"
	"github.com/kailas-cloud/bumper/internal/domain/document"
	domreport "github.com/kailas-cloud/bumper/internal/domain/report"
	"github.com/kailas-cloud/bumper/internal/domain/search/filter"
	"github.com/kailas-cloud/bumper/internal/domain/search/mode"
	"github.com/kailas-cloud/bumper/internal/domain/search/partition"
	"github.com/kailas-cloud/bumper/internal/domain/search/request"
	"github.com/kailas-cloud/bumper/internal/logger"
)

// Gateway op labels.
const (
	OpSearch = "search"
	OpFixes  = "fixes"
)

// DefaultConcurrency bounds FetchFixesAll when no limit is given.
const DefaultConcurrency = 4

// Service searches reports and attaches their fixes.
type Service struct {
	gateway     Gateway
	composer    Composer
	concurrency int
}

// New creates a report service. concurrency <= 0 means DefaultConcurrency.
func New(gateway Gateway, composer Composer, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Service{gateway: gateway, composer: composer, concurrency: concurrency}
}

// Criteria are raw search inputs before validation.
type Criteria struct {
	Query     string
	Advanced  bool
	Start     int
	Rows      int
	Languages []string
	Datasets  []string
}

// Prepare validates criteria into search parameters.
// Empty facets are dropped; language comes before dataset in the filter clause.
func (s *Service) Prepare(c Criteria) (request.Params, error) {
	var facets []filter.Spec

	if len(c.Languages) > 0 {
		f, err := s.composer.LanguageFacet(c.Languages)
		if err != nil {
			return request.Params{}, fmt.Errorf("language facet: %w", err)
		}
		facets = append(facets, f)
	}
	if len(c.Datasets) > 0 {
		f, err := s.composer.DatasetFacet(c.Datasets)
		if err != nil {
			return request.Params{}, fmt.Errorf("dataset facet: %w", err)
		}
		facets = append(facets, f)
	}

	p, err := request.New(c.Query, mode.FromAdvanced(c.Advanced), c.Start, c.Rows, facets...)
	if err != nil {
		return request.Params{}, fmt.Errorf("search params: %w", err)
	}
	return p, nil
}

// Search runs a report search and maps every returned document to a Report.
func (s *Service) Search(ctx context.Context, p *request.Params) ([]domreport.Report, error) {
	res, err := s.gateway.Select(ctx, OpSearch, s.composer.Search(p))
	if err != nil {
		return nil, fmt.Errorf("search reports: %w", err)
	}

	docs := res.Docs()
	reports := make([]domreport.Report, len(docs))
	for i, doc := range docs {
		reports[i] = domreport.FromDocument(doc)
	}

	logger.FromContext(ctx).Debug("reports found",
		zap.Int("count", len(reports)),
		zap.String("num_found", res.NumFound()),
		zap.Bool("advanced", p.Advanced()),
	)
	return reports, nil
}

// FetchFixes retrieves the changeset and hunks of r and attaches them.
func (s *Service) FetchFixes(ctx context.Context, r *domreport.Report) error {
	if r.ID() == "" {
		return fmt.Errorf("%w: report id is required", domain.ErrMalformedParams)
	}

	log := logger.FromContext(ctx).With(zap.String("report_id", r.ID()))
	log.Debug("fetching fixes")

	res, err := s.gateway.Select(ctx, OpFixes, s.composer.Fixes(r.ID()))
	if err != nil {
		return fmt.Errorf("fetch fixes %q: %w", r.ID(), err)
	}

	changeset, hunks, err := partition.Split(res.Docs(), res.NumFound())
	if err != nil {
		if window := s.composer.FixRows(); len(res.Docs()) >= window {
			return fmt.Errorf("fetch fixes %q: %w (fix window of %d rows is full, raise solr.fix_rows)",
				r.ID(), err, window)
		}
		return fmt.Errorf("fetch fixes %q: %w", r.ID(), err)
	}

	if err := r.AttachFixes(changeset, hunks); err != nil {
		return fmt.Errorf("fetch fixes: %w", err)
	}

	log.Debug("fixes attached", zap.Int("hunks", len(hunks)))
	return nil
}

// Fixes fetches the fixes of the report with the given id.
func (s *Service) Fixes(ctx context.Context, id string) (domreport.Report, error) {
	r := domreport.FromDocument(document.Document{document.FieldID: id})
	if err := s.FetchFixes(ctx, &r); err != nil {
		return domreport.Report{}, err
	}
	return r, nil
}

// FetchFixesAll fetches fixes for every report with bounded concurrency.
// Reports that already carry fixes are skipped. The first error cancels the rest.
func (s *Service) FetchFixesAll(ctx context.Context, reports []domreport.Report) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range reports {
		r := &reports[i]
		if r.HasFixes() {
			continue
		}
		g.Go(func() error {
			return s.FetchFixes(gctx, r)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("fetch fixes for %d reports: %w", len(reports), err)
	}
	return nil
}
