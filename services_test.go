package bumper

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/bumper/internal/domain"
	"github.com/kailas-cloud/bumper/internal/domain/document"
	domreport "github.com/kailas-cloud/bumper/internal/domain/report"
	"github.com/kailas-cloud/bumper/internal/domain/search/mode"
	"github.com/kailas-cloud/bumper/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/bumper/internal/usecase/health"
	reportuc "github.com/kailas-cloud/bumper/internal/usecase/report"
)

func preparePassthrough(t *testing.T, seen *reportuc.Criteria) func(c reportuc.Criteria) (request.Params, error) {
	t.Helper()
	return func(c reportuc.Criteria) (request.Params, error) {
		*seen = c
		return request.New(c.Query, mode.FromAdvanced(c.Advanced), c.Start, c.Rows)
	}
}

func withFixes(t *testing.T, id string, hunks int) domreport.Report {
	t.Helper()
	r := domreport.FromDocument(document.Document{"id": id})
	hs := make([]document.Document, hunks)
	for i := range hs {
		hs[i] = document.Document{"id": id + "-h"}
	}
	require.NoError(t, r.AttachFixes(document.Document{"id": id + "-cs"}, hs))
	return r
}

func TestSearch_PassesCriteria(t *testing.T) {
	var seen reportuc.Criteria
	mock := &mockReportUC{
		prepareFn: preparePassthrough(t, &seen),
		searchFn: func(_ context.Context, p *request.Params) ([]domreport.Report, error) {
			assert.Equal(t, 40, p.Start())
			return []domreport.Report{domreport.FromDocument(document.Document{"id": "bug_1"})}, nil
		},
	}
	c := testClient(mock, nil)

	reports, err := c.Search(context.Background(), "NPE", &SearchOptions{
		Start:     40,
		Rows:      20,
		Languages: []string{"java"},
		Datasets:  []string{"Apache"},
	})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "bug_1", reports[0].ID)

	assert.Equal(t, "NPE", seen.Query)
	assert.Equal(t, []string{"java"}, seen.Languages)
	assert.Equal(t, []string{"Apache"}, seen.Datasets)
	assert.False(t, seen.Advanced)
}

func TestSearch_PrepareError(t *testing.T) {
	mock := &mockReportUC{
		prepareFn: func(_ reportuc.Criteria) (request.Params, error) {
			return request.Params{}, domain.ErrMalformedParams
		},
	}
	c := testClient(mock, nil)

	_, err := c.Search(context.Background(), "", nil)
	assert.True(t, errors.Is(err, ErrMalformedParams))
}

func TestSearch_FixesError(t *testing.T) {
	var seen reportuc.Criteria
	mock := &mockReportUC{
		prepareFn: preparePassthrough(t, &seen),
		searchFn: func(_ context.Context, _ *request.Params) ([]domreport.Report, error) {
			return []domreport.Report{domreport.FromDocument(document.Document{"id": "bug_1"})}, nil
		},
		fetchAllFn: func(_ context.Context, _ []domreport.Report) error {
			return domain.ErrInvalidResult
		},
	}
	c := testClient(mock, nil)

	_, err := c.Search(context.Background(), "NPE", &SearchOptions{WithFixes: true})
	assert.True(t, errors.Is(err, ErrInvalidResult))
}

func TestSearchBuilder(t *testing.T) {
	var seen reportuc.Criteria
	mock := &mockReportUC{
		prepareFn: preparePassthrough(t, &seen),
		searchFn: func(_ context.Context, _ *request.Params) ([]domreport.Report, error) {
			return nil, nil
		},
		fetchAllFn: func(_ context.Context, _ []domreport.Report) error { return nil },
	}
	c := testClient(mock, nil)

	_, err := c.Reports().
		Query("type:BUG").
		Languages("java").
		Languages("c").
		Datasets("Apache").
		Page(10, 5).
		Advanced().
		WithFixes().
		Do(context.Background())
	require.NoError(t, err)

	assert.Equal(t, reportuc.Criteria{
		Query:     "type:BUG",
		Advanced:  true,
		Start:     10,
		Rows:      5,
		Languages: []string{"java", "c"},
		Datasets:  []string{"Apache"},
	}, seen)
}

func TestFixes(t *testing.T) {
	mock := &mockReportUC{
		fixesFn: func(_ context.Context, id string) (domreport.Report, error) {
			return withFixes(t, id, 2), nil
		},
	}
	c := testClient(mock, nil)

	r, err := c.Fixes(context.Background(), "bug_3")
	require.NoError(t, err)
	assert.Equal(t, "bug_3", r.ID)
	assert.True(t, r.HasFixes)
	assert.Equal(t, "bug_3-cs", r.Changeset["id"])
	assert.Len(t, r.Fixes, 2)
}

func TestFetchFixes_SkipsFetched(t *testing.T) {
	var ids []string
	mock := &mockReportUC{
		fetchAllFn: func(_ context.Context, reports []domreport.Report) error {
			for i := range reports {
				ids = append(ids, reports[i].ID())
				hunks := []document.Document{{"id": "h"}}
				if err := reports[i].AttachFixes(document.Document{"id": "cs"}, hunks); err != nil {
					return err
				}
			}
			return nil
		},
	}
	c := testClient(mock, nil)

	reports := []Report{
		{ID: "bug_1", Document: Document{"id": "bug_1", "title": "x"}},
		{ID: "bug_2", HasFixes: true, Changeset: Document{"id": "old"}},
		{ID: "bug_3"},
	}
	require.NoError(t, c.FetchFixes(context.Background(), reports))

	assert.Equal(t, []string{"bug_1", "bug_3"}, ids)
	assert.Equal(t, "cs", reports[0].Changeset["id"])
	assert.Equal(t, "old", reports[1].Changeset["id"])
	assert.Len(t, reports[2].Fixes, 1)
	assert.Equal(t, "x", reports[0].Document["title"])
}

func TestFetchFixes_ErrorLeavesReports(t *testing.T) {
	mock := &mockReportUC{
		fetchAllFn: func(_ context.Context, _ []domreport.Report) error {
			return domain.ErrTransportFailure
		},
	}
	c := testClient(mock, nil)

	reports := []Report{{ID: "bug_1"}}
	err := c.FetchFixes(context.Background(), reports)
	assert.True(t, errors.Is(err, ErrTransportFailure))
	assert.False(t, reports[0].HasFixes)
	assert.Nil(t, reports[0].Changeset)
}

func TestFetchFixes_NothingPending(t *testing.T) {
	mock := &mockReportUC{
		fetchAllFn: func(_ context.Context, _ []domreport.Report) error {
			t.Fatal("must not be called")
			return nil
		},
	}
	c := testClient(mock, nil)

	require.NoError(t, c.FetchFixes(context.Background(), []Report{{ID: "bug_1", HasFixes: true}}))
	require.NoError(t, c.FetchFixes(context.Background(), nil))
}

func TestHealth(t *testing.T) {
	c := testClient(nil, &mockHealthUC{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"search": healthuc.CheckOK, "cache": healthuc.CheckError},
	}})

	h := c.Health(context.Background())
	assert.Equal(t, "degraded", h.Status)
	assert.Equal(t, map[string]string{"search": "ok", "cache": "error"}, h.Checks)
}

func TestRegisterOrReuse(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newSDKMetrics(reg)
	require.NoError(t, err)
	second, err := newSDKMetrics(reg)
	require.NoError(t, err)
	assert.Same(t, first.operations, second.operations)
	assert.Equal(t, first.hunks, second.hunks)
}

func TestObserve_Outcomes(t *testing.T) {
	obs, err := newObserver(nil, prometheus.NewRegistry())
	require.NoError(t, err)

	mock := &mockReportUC{
		fixesFn: func(_ context.Context, id string) (domreport.Report, error) {
			if id == "broken" {
				return domreport.Report{}, fmt.Errorf("fetch fixes: %w", domain.ErrInvalidResult)
			}
			return withFixes(t, id, 3), nil
		},
	}
	c := testClient(mock, nil)
	c.obs = obs

	_, err = c.Fixes(context.Background(), "bug_1")
	require.NoError(t, err)
	_, err = c.Fixes(context.Background(), "broken")
	require.Error(t, err)

	ops := obs.metrics.operations
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues(opFixes, outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues(opFixes, outcomeInvalidResult)))
	var m dto.Metric
	require.NoError(t, obs.metrics.hunks.Write(&m))
	assert.Equal(t, uint64(1), m.GetHistogram().GetSampleCount())
	assert.Equal(t, 3.0, m.GetHistogram().GetSampleSum())
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, outcomeOK},
		{fmt.Errorf("search: %w", domain.ErrMalformedParams), outcomeMalformedParams},
		{fmt.Errorf("fixes: %w", domain.ErrInvalidResult), outcomeInvalidResult},
		{fmt.Errorf("select: %w", domain.ErrTransportFailure), outcomeTransportFailure},
		{errors.Join(domain.ErrTransportFailure, context.DeadlineExceeded), outcomeCanceled},
		{domain.ErrFixesAttached, outcomeFixesAttached},
		{errors.New("boom"), outcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, outcome(tt.err))
		})
	}
}
