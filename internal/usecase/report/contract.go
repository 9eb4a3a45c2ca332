package report

import (
	"context"

	"github.com/kailas-cloud/bumper/internal/domain/search/filter"
	"github.com/kailas-cloud/bumper/internal/domain/search/request"
	"github.com/kailas-cloud/bumper/internal/domain/search/result"
)

// Gateway executes encoded select queries against the search backend.
type Gateway interface {
	Select(ctx context.Context, op, encodedQuery string) (result.Result, error)
}

// Composer builds facets and encoded select queries.
type Composer interface {
	LanguageFacet(languages []string) (filter.Spec, error)
	DatasetFacet(datasets []string) (filter.Spec, error)
	Search(p *request.Params) string
	Fixes(recordID string) string
	FixRows() int
}
