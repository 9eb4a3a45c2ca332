package bumper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bumper/internal/db"
	dbRedis "github.com/kailas-cloud/bumper/internal/db/redis"
	domreport "github.com/kailas-cloud/bumper/internal/domain/report"
	"github.com/kailas-cloud/bumper/internal/domain/search/query"
	"github.com/kailas-cloud/bumper/internal/domain/search/request"
	"github.com/kailas-cloud/bumper/internal/repository/respcache"
	"github.com/kailas-cloud/bumper/internal/transport/solr"
	healthuc "github.com/kailas-cloud/bumper/internal/usecase/health"
	reportuc "github.com/kailas-cloud/bumper/internal/usecase/report"
	"github.com/kailas-cloud/bumper/internal/version"
)

// DefaultBaseURL is the public Bumper select endpoint.
const DefaultBaseURL = "https://bumper-app.com/api/select"

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCacheTTL         = 5 * time.Minute
)

// Internal interfaces, swapped for mocks in tests.
type reportUseCase interface {
	Prepare(c reportuc.Criteria) (request.Params, error)
	Search(ctx context.Context, p *request.Params) ([]domreport.Report, error)
	Fixes(ctx context.Context, id string) (domreport.Report, error)
	FetchFixesAll(ctx context.Context, reports []domreport.Report) error
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the bumper SDK entry point. Safe for concurrent use.
type Client struct {
	store   db.Store // nil when caching is disabled
	reports reportUseCase
	health  healthUseCase
	obs     *observer
}

// New creates a Client. When WithCache is set, the provided context bounds
// the initial cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		baseURL:   DefaultBaseURL,
		userAgent: "bumper-go/" + version.Version,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	composer, err := query.New(query.Config{
		SortField:         cfg.sortField,
		SortOrder:         cfg.sortOrder,
		LanguageAttribute: cfg.languageAttribute,
		DatasetAttribute:  cfg.datasetAttribute,
		FixRows:           cfg.fixRows,
	})
	if err != nil {
		return nil, fmt.Errorf("bumper: %w", err)
	}

	backend, err := solr.NewClient(&solr.Config{
		BaseURL:    cfg.baseURL,
		Timeout:    cfg.timeout,
		UserAgent:  cfg.userAgent,
		HTTPClient: cfg.httpClient,
		Logger:     zap.NewNop(),
	})
	if err != nil {
		return nil, fmt.Errorf("bumper: %w", err)
	}

	var gateway reportuc.Gateway = backend
	var store db.Store
	// Nil interface, not a typed nil pointer, when the cache is off.
	var cachePinger healthuc.CachePinger

	if len(cfg.cacheAddrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.cacheAddrs, Password: cfg.cachePassword})
		if err != nil {
			return nil, fmt.Errorf("bumper: create cache store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("bumper: cache not ready: %w", err)
		}
		ttl := cfg.cacheTTL
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		gateway = respcache.New(backend, s, ttl, nil, zap.NewNop())
		store = s
		cachePinger = s
	}

	return &Client{
		store:   store,
		reports: reportuc.New(gateway, composer, cfg.concurrency),
		health:  healthuc.New(backend, cachePinger),
		obs:     obs,
	}, nil
}

// Close releases the cache connection, if any.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Health checks the search backend and, when enabled, the cache.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}
