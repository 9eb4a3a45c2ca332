package bumper

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string

	sortField         string
	sortOrder         string
	languageAttribute string
	datasetAttribute  string
	fixRows           int
	concurrency       int

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithBaseURL sets the select endpoint of the search backend.
// Defaults to DefaultBaseURL.
func WithBaseURL(u string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = u
	})
}

// WithHTTPClient replaces the HTTP client used for backend requests.
// WithTimeout is ignored when a client is provided.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithTimeout sets the per-request timeout. Default: 15s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userAgent = ua
	})
}

// WithSort sets the search sort key. Default: live_saver desc.
func WithSort(field, order string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sortField = field
		c.sortOrder = order
	})
}

// WithFacetAttributes overrides the language and dataset term prefixes.
// Defaults: "file:*." and "dataset:".
func WithFacetAttributes(language, dataset string) Option {
	return optionFunc(func(c *clientConfig) {
		c.languageAttribute = language
		c.datasetAttribute = dataset
	})
}

// WithFixRows sets the row window of fix lookups. Default: 1000.
func WithFixRows(rows int) Option {
	return optionFunc(func(c *clientConfig) {
		c.fixRows = rows
	})
}

// WithConcurrency bounds parallel fix lookups. Default: 4.
func WithConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.concurrency = n
	})
}

// WithCache caches backend responses in Redis or Valkey for ttl.
// Disabled by default.
func WithCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
