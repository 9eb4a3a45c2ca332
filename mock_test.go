package bumper

import (
	"context"

	domreport "github.com/kailas-cloud/bumper/internal/domain/report"
	"github.com/kailas-cloud/bumper/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/bumper/internal/usecase/health"
	reportuc "github.com/kailas-cloud/bumper/internal/usecase/report"
)

// --- reportUseCase mock ---

type mockReportUC struct {
	prepareFn  func(c reportuc.Criteria) (request.Params, error)
	searchFn   func(ctx context.Context, p *request.Params) ([]domreport.Report, error)
	fixesFn    func(ctx context.Context, id string) (domreport.Report, error)
	fetchAllFn func(ctx context.Context, reports []domreport.Report) error
}

func (m *mockReportUC) Prepare(c reportuc.Criteria) (request.Params, error) {
	return m.prepareFn(c)
}

func (m *mockReportUC) Search(ctx context.Context, p *request.Params) ([]domreport.Report, error) {
	return m.searchFn(ctx, p)
}

func (m *mockReportUC) Fixes(ctx context.Context, id string) (domreport.Report, error) {
	return m.fixesFn(ctx, id)
}

func (m *mockReportUC) FetchFixesAll(ctx context.Context, reports []domreport.Report) error {
	return m.fetchAllFn(ctx, reports)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- helpers ---

func testClient(reports reportUseCase, health healthUseCase) *Client {
	return &Client{reports: reports, health: health}
}
