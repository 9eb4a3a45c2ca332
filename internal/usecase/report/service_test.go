package report

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kailas-cloud/bumper/internal/domain"
	"github.com/kailas-cloud/bumper/internal/domain/document"
	domreport "github.com/kailas-cloud/bumper/internal/domain/report"
	"github.com/kailas-cloud/bumper/internal/domain/search/mode"
	"github.com/kailas-cloud/bumper/internal/domain/search/query"
	"github.com/kailas-cloud/bumper/internal/domain/search/request"
	"github.com/kailas-cloud/bumper/internal/domain/search/result"
)

// --- Mocks ---

type mockGateway struct {
	mu       sync.Mutex
	queries  map[string][]string
	selectFn func(op, q string) (result.Result, error)
}

func (m *mockGateway) Select(_ context.Context, op, q string) (result.Result, error) {
	m.mu.Lock()
	if m.queries == nil {
		m.queries = map[string][]string{}
	}
	m.queries[op] = append(m.queries[op], q)
	m.mu.Unlock()
	return m.selectFn(op, q)
}

func newComposer(t *testing.T) *query.Composer {
	t.Helper()
	c, err := query.New(query.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func fixDocs(id string, hunks int) []document.Document {
	docs := []document.Document{{"id": id + "-cs", "type": "CHANGESET", "parent_bug": id}}
	for i := 0; i < hunks; i++ {
		docs = append(docs, document.Document{"id": id + "-h", "type": "HUNKS", "parent_bug": id, "n": json.Number(strconv.Itoa(i))})
	}
	return docs
}

func mustParams(t *testing.T, q string) request.Params {
	t.Helper()
	p, err := request.New(q, mode.Standard, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

// --- Search ---

func TestSearch_MapsDocuments(t *testing.T) {
	gw := &mockGateway{selectFn: func(_, _ string) (result.Result, error) {
		return result.New([]document.Document{
			{"id": "bug_1", "report_t": "NPE"},
			{"id": "bug_2", "report_t": "leak"},
		}, "2"), nil
	}}
	svc := New(gw, newComposer(t), 0)

	p := mustParams(t, "NPE")
	reports, err := svc.Search(context.Background(), &p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].ID() != "bug_1" || reports[1].ID() != "bug_2" {
		t.Errorf("unexpected ids: %q %q", reports[0].ID(), reports[1].ID())
	}
	if reports[0].HasFixes() {
		t.Error("search must not attach fixes")
	}
	if len(gw.queries[OpSearch]) != 1 || !strings.Contains(gw.queries[OpSearch][0], "rows=10") {
		t.Errorf("unexpected search query: %v", gw.queries[OpSearch])
	}
}

func TestSearch_Empty(t *testing.T) {
	gw := &mockGateway{selectFn: func(_, _ string) (result.Result, error) {
		return result.New([]document.Document{}, "0"), nil
	}}
	svc := New(gw, newComposer(t), 0)

	p := mustParams(t, "nothing")
	reports, err := svc.Search(context.Background(), &p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 0 {
		t.Errorf("expected no reports, got %d", len(reports))
	}
}

func TestSearch_TransportFailure(t *testing.T) {
	gw := &mockGateway{selectFn: func(_, _ string) (result.Result, error) {
		return result.Result{}, domain.ErrTransportFailure
	}}
	svc := New(gw, newComposer(t), 0)

	p := mustParams(t, "NPE")
	_, err := svc.Search(context.Background(), &p)
	if !errors.Is(err, domain.ErrTransportFailure) {
		t.Fatalf("expected ErrTransportFailure, got %v", err)
	}
}

// --- FetchFixes ---

func TestFetchFixes_Partitions(t *testing.T) {
	gw := &mockGateway{selectFn: func(_, _ string) (result.Result, error) {
		return result.New(fixDocs("bug_1", 3), "4"), nil
	}}
	svc := New(gw, newComposer(t), 0)

	r := domreport.FromDocument(document.Document{"id": "bug_1"})
	if err := svc.FetchFixes(context.Background(), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Changeset().ID() != "bug_1-cs" {
		t.Errorf("changeset = %v", r.Changeset())
	}
	if len(r.Fixes()) != 3 {
		t.Errorf("expected 3 hunks, got %d", len(r.Fixes()))
	}
	if !strings.Contains(gw.queries[OpFixes][0], "fq=parent_bug%3Abug_1") {
		t.Errorf("unexpected fixes query: %s", gw.queries[OpFixes][0])
	}
}

func TestFetchFixes_ChangesetOnly(t *testing.T) {
	gw := &mockGateway{selectFn: func(_, _ string) (result.Result, error) {
		return result.New(fixDocs("bug_1", 0), "1"), nil
	}}
	svc := New(gw, newComposer(t), 0)

	r := domreport.FromDocument(document.Document{"id": "bug_1"})
	if err := svc.FetchFixes(context.Background(), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Fixes() == nil || len(r.Fixes()) != 0 {
		t.Errorf("expected empty non-nil hunks, got %v", r.Fixes())
	}
}

func TestFetchFixes_InvalidResult(t *testing.T) {
	tests := []struct {
		name     string
		docs     []document.Document
		numFound string
	}{
		{"no documents", []document.Document{}, "0"},
		{"count exceeds docs", fixDocs("bug_1", 1), "5"},
		{"count not a number", fixDocs("bug_1", 1), "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockGateway{selectFn: func(_, _ string) (result.Result, error) {
				return result.New(tt.docs, tt.numFound), nil
			}}
			svc := New(gw, newComposer(t), 0)

			r := domreport.FromDocument(document.Document{"id": "bug_1"})
			err := svc.FetchFixes(context.Background(), &r)
			if !errors.Is(err, domain.ErrInvalidResult) {
				t.Fatalf("expected ErrInvalidResult, got %v", err)
			}
			if r.HasFixes() {
				t.Error("report must stay unmodified on failure")
			}
		})
	}
}

func TestFetchFixes_WindowFull(t *testing.T) {
	gw := &mockGateway{selectFn: func(_, _ string) (result.Result, error) {
		return result.New(fixDocs("bug_1", 2), "1200"), nil
	}}
	composer, err := query.New(query.Config{FixRows: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc := New(gw, composer, 0)

	r := domreport.FromDocument(document.Document{"id": "bug_1"})
	err = svc.FetchFixes(context.Background(), &r)
	if !errors.Is(err, domain.ErrInvalidResult) {
		t.Fatalf("expected ErrInvalidResult, got %v", err)
	}
	if !strings.Contains(err.Error(), "fix window of 3 rows is full") || !strings.Contains(err.Error(), "solr.fix_rows") {
		t.Errorf("error does not name the fix window: %v", err)
	}
	if !strings.Contains(gw.queries[OpFixes][0], "rows=3") {
		t.Errorf("fix query = %q, want rows=3", gw.queries[OpFixes][0])
	}
}

func TestFetchFixes_ShortResultKeepsPlainError(t *testing.T) {
	gw := &mockGateway{selectFn: func(_, _ string) (result.Result, error) {
		return result.New(fixDocs("bug_1", 1), "5"), nil
	}}
	svc := New(gw, newComposer(t), 0)

	r := domreport.FromDocument(document.Document{"id": "bug_1"})
	err := svc.FetchFixes(context.Background(), &r)
	if !errors.Is(err, domain.ErrInvalidResult) {
		t.Fatalf("expected ErrInvalidResult, got %v", err)
	}
	if strings.Contains(err.Error(), "fix_rows") {
		t.Errorf("unexpected fix window hint: %v", err)
	}
}

func TestFetchFixes_EmptyID(t *testing.T) {
	gw := &mockGateway{selectFn: func(_, _ string) (result.Result, error) {
		t.Fatal("gateway must not be called")
		return result.Result{}, nil
	}}
	svc := New(gw, newComposer(t), 0)

	r := domreport.FromDocument(document.Document{})
	if err := svc.FetchFixes(context.Background(), &r); !errors.Is(err, domain.ErrMalformedParams) {
		t.Fatalf("expected ErrMalformedParams, got %v", err)
	}
}

func TestFetchFixes_Twice(t *testing.T) {
	gw := &mockGateway{selectFn: func(_, _ string) (result.Result, error) {
		return result.New(fixDocs("bug_1", 1), "2"), nil
	}}
	svc := New(gw, newComposer(t), 0)

	r := domreport.FromDocument(document.Document{"id": "bug_1"})
	if err := svc.FetchFixes(context.Background(), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.FetchFixes(context.Background(), &r); !errors.Is(err, domain.ErrFixesAttached) {
		t.Fatalf("expected ErrFixesAttached, got %v", err)
	}
}

func TestFixes_ByID(t *testing.T) {
	gw := &mockGateway{selectFn: func(_, _ string) (result.Result, error) {
		return result.New(fixDocs("bug_9", 2), "3"), nil
	}}
	svc := New(gw, newComposer(t), 0)

	r, err := svc.Fixes(context.Background(), "bug_9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID() != "bug_9" || len(r.Fixes()) != 2 {
		t.Errorf("unexpected report: id=%q hunks=%d", r.ID(), len(r.Fixes()))
	}
}

// --- FetchFixesAll ---

func TestFetchFixesAll_BoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	gw := &mockGateway{selectFn: func(_, q string) (result.Result, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		return result.New(fixDocs("x", 2), "3"), nil
	}}
	svc := New(gw, newComposer(t), 2)

	reports := make([]domreport.Report, 6)
	for i := range reports {
		reports[i] = domreport.FromDocument(document.Document{"id": "bug_" + string(rune('a'+i))})
	}

	if err := svc.FetchFixesAll(context.Background(), reports); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range reports {
		if !r.HasFixes() || len(r.Fixes()) != 2 {
			t.Errorf("report %q: fixes not attached", r.ID())
		}
	}
	if peak.Load() > 2 {
		t.Errorf("concurrency limit exceeded: peak %d", peak.Load())
	}
	if len(gw.queries[OpFixes]) != 6 {
		t.Errorf("expected 6 fix queries, got %d", len(gw.queries[OpFixes]))
	}
}

func TestFetchFixesAll_SkipsAttached(t *testing.T) {
	gw := &mockGateway{selectFn: func(_, _ string) (result.Result, error) {
		return result.New(fixDocs("x", 1), "2"), nil
	}}
	svc := New(gw, newComposer(t), 0)

	reports := []domreport.Report{
		domreport.FromDocument(document.Document{"id": "bug_1"}),
		domreport.FromDocument(document.Document{"id": "bug_2"}),
	}
	if err := reports[0].AttachFixes(document.Document{"id": "cs"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.FetchFixesAll(context.Background(), reports); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gw.queries[OpFixes]) != 1 {
		t.Errorf("expected 1 fix query, got %d", len(gw.queries[OpFixes]))
	}
}

func TestFetchFixesAll_Error(t *testing.T) {
	gw := &mockGateway{selectFn: func(_, q string) (result.Result, error) {
		if strings.Contains(q, "bug_2") {
			return result.Result{}, domain.ErrTransportFailure
		}
		return result.New(fixDocs("x", 1), "2"), nil
	}}
	svc := New(gw, newComposer(t), 1)

	reports := []domreport.Report{
		domreport.FromDocument(document.Document{"id": "bug_1"}),
		domreport.FromDocument(document.Document{"id": "bug_2"}),
	}

	err := svc.FetchFixesAll(context.Background(), reports)
	if !errors.Is(err, domain.ErrTransportFailure) {
		t.Fatalf("expected ErrTransportFailure, got %v", err)
	}
}

// --- Prepare ---

func TestPrepare_Facets(t *testing.T) {
	svc := New(&mockGateway{}, newComposer(t), 0)

	p, err := svc.Prepare(Criteria{
		Query:     "NPE",
		Start:     20,
		Languages: []string{"java", "c"},
		Datasets:  []string{"Apache"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Advanced() || p.Start() != 20 || p.Rows() != request.DefaultRows {
		t.Errorf("unexpected params: advanced=%v start=%d rows=%d", p.Advanced(), p.Start(), p.Rows())
	}
	if len(p.Facets()) != 2 {
		t.Fatalf("expected 2 facets, got %d", len(p.Facets()))
	}
	if got := p.Facets()[0].Clause(); got != "AND (file:*.java OR file:*.c)" {
		t.Errorf("language clause = %q", got)
	}
	if got := p.Facets()[1].Clause(); got != "AND (dataset:Apache)" {
		t.Errorf("dataset clause = %q", got)
	}
}

func TestPrepare_NoFacets(t *testing.T) {
	svc := New(&mockGateway{}, newComposer(t), 0)

	p, err := svc.Prepare(Criteria{Query: "type:BUG", Advanced: true, Rows: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Advanced() || len(p.Facets()) != 0 || p.Rows() != 5 {
		t.Errorf("unexpected params: advanced=%v facets=%d rows=%d", p.Advanced(), len(p.Facets()), p.Rows())
	}
}

func TestPrepare_Malformed(t *testing.T) {
	svc := New(&mockGateway{}, newComposer(t), 0)

	tests := []struct {
		name string
		c    Criteria
	}{
		{"empty query", Criteria{}},
		{"negative start", Criteria{Query: "x", Start: -1}},
		{"rows too large", Criteria{Query: "x", Rows: request.MaxRows + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Prepare(tt.c); !errors.Is(err, domain.ErrMalformedParams) {
				t.Fatalf("expected ErrMalformedParams, got %v", err)
			}
		})
	}
}
