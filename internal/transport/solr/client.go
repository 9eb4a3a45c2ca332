// Package solr is the HTTP gateway to the Bumper Solr select endpoint.
package solr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bumper/internal/domain"
	"github.com/kailas-cloud/bumper/internal/domain/document"
	"github.com/kailas-cloud/bumper/internal/domain/search/result"
	"github.com/kailas-cloud/bumper/internal/metrics"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 32 << 20

	// OpPing labels health check requests.
	OpPing = "ping"

	pingQuery = "q=%2A%3A%2A&rows=0&wt=json"
)

// Error describes a failed select request. It unwraps to domain.ErrTransportFailure
// and, when present, to the underlying network or decode error.
type Error struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("solr %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("solr %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() []error { return []error{domain.ErrTransportFailure, e.Err} }

// Config holds the gateway settings.
type Config struct {
	BaseURL    string // select endpoint, e.g. https://bumper-app.com/api/select
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client executes encoded select queries. Safe for concurrent use.
type Client struct {
	endpoint  *url.URL
	http      *http.Client
	userAgent string
	logger    *zap.Logger
}

// NewClient creates a gateway for the given select endpoint.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("solr: base url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("solr: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("solr: base url must be http(s), got %q", cfg.BaseURL)
	}
	u.RawQuery = ""

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{endpoint: u, http: hc, userAgent: cfg.UserAgent, logger: logger}, nil
}

// Select runs an encoded select query and decodes response.docs and response.numFound.
// op labels metrics and logs.
func (c *Client) Select(ctx context.Context, op, encodedQuery string) (result.Result, error) {
	start := time.Now()
	res, status, err := c.do(ctx, encodedQuery)
	duration := time.Since(start)

	if err != nil {
		metrics.SolrRequestsTotal.WithLabelValues(op, "error").Inc()
		metrics.SolrErrorsTotal.WithLabelValues(op, errorType(status, err)).Inc()
		c.logger.Warn("Search backend request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return result.Result{}, &Error{Op: op, StatusCode: status, Err: err}
	}

	metrics.SolrRequestsTotal.WithLabelValues(op, "success").Inc()
	metrics.SolrRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
	c.logger.Debug("Search backend request completed",
		zap.String("op", op),
		zap.Int("docs", len(res.Docs())),
		zap.String("num_found", res.NumFound()),
		zap.Duration("duration", duration),
	)
	return res, nil
}

// HealthCheck runs a zero-row match-all query.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.Select(ctx, OpPing, pingQuery); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, encodedQuery string) (result.Result, int, error) {
	u := *c.endpoint
	u.RawQuery = encodedQuery

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return result.Result{}, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return result.Result{}, 0, fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return result.Result{}, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxResponseSize {
		return result.Result{}, resp.StatusCode, fmt.Errorf("response exceeds %d bytes", maxResponseSize)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result.Result{}, resp.StatusCode, fmt.Errorf("unexpected status: %s", extractMessage(body, resp.Status))
	}

	res, err := Decode(body)
	if err != nil {
		return result.Result{}, resp.StatusCode, err
	}
	return res, resp.StatusCode, nil
}

// errDecode marks malformed response bodies for the error_type metric label.
var errDecode = errors.New("decode response")

// Decode extracts response.docs and response.numFound from a select response body.
// numFound is kept as text, whether the backend sent a string or a number.
// Document fields are passed through verbatim; see decodeObject.
func Decode(body []byte) (result.Result, error) {
	if !gjson.ValidBytes(body) {
		return result.Result{}, fmt.Errorf("%w: invalid json", errDecode)
	}

	resp := gjson.GetBytes(body, "response")
	if !resp.IsObject() {
		return result.Result{}, fmt.Errorf("%w: missing response object", errDecode)
	}

	numFound := resp.Get("numFound")
	if numFound.Type != gjson.Number && numFound.Type != gjson.String {
		return result.Result{}, fmt.Errorf("%w: missing response.numFound", errDecode)
	}

	rawDocs := resp.Get("docs")
	if !rawDocs.IsArray() {
		return result.Result{}, fmt.Errorf("%w: missing response.docs", errDecode)
	}

	items := rawDocs.Array()
	docs := make([]document.Document, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return result.Result{}, fmt.Errorf("%w: response.docs[%d] is not an object", errDecode, i)
		}
		docs[i] = decodeObject(item)
	}

	return result.New(docs, numFound.String()), nil
}

// decodeObject converts a JSON object like gjson's Value, except that numbers
// are kept as json.Number with their original text.
func decodeObject(obj gjson.Result) map[string]any {
	out := make(map[string]any)
	obj.ForEach(func(key, value gjson.Result) bool {
		out[key.String()] = decodeValue(value)
		return true
	})
	return out
}

func decodeValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return json.Number(v.Raw)
	case gjson.String:
		return v.String()
	}

	if v.IsArray() {
		out := make([]any, 0)
		v.ForEach(func(_, elem gjson.Result) bool {
			out = append(out, decodeValue(elem))
			return true
		})
		return out
	}
	if v.IsObject() {
		return decodeObject(v)
	}
	return nil
}

// extractMessage pulls error.msg out of a Solr error body, falling back to the HTTP status.
func extractMessage(body []byte, status string) string {
	if msg := gjson.GetBytes(body, "error.msg"); msg.Exists() && msg.String() != "" {
		return status + ": " + msg.String()
	}
	return status
}

func errorType(status int, err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, errDecode):
		return "decode"
	case status != 0:
		return "status_" + strconv.Itoa(status)
	default:
		return "network"
	}
}
