package respcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bumper/internal/db"
	"github.com/kailas-cloud/bumper/internal/domain/document"
	"github.com/kailas-cloud/bumper/internal/domain/search/result"
)

// KeyPrefix namespaces cache entries.
const KeyPrefix = "bumper:resp_cache:"

// Gateway is the decorated select gateway.
type Gateway interface {
	Select(ctx context.Context, op, encodedQuery string) (result.Result, error)
}

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// uncachedOps always reach the backend.
var uncachedOps = map[string]struct{}{"ping": {}}

// CachedGateway caches select results in a key-value store.
// Store failures are logged and fall through to the inner gateway.
type CachedGateway struct {
	inner      Gateway
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Gateway,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedGateway {
	return &CachedGateway{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// cachedResult is the stored form of a select result.
type cachedResult struct {
	NumFound string              `json:"numFound"`
	Docs     []document.Document `json:"docs"`
}

// Select returns a cached result or calls the inner gateway.
// Failed selects are never cached.
func (c *CachedGateway) Select(ctx context.Context, op, encodedQuery string) (result.Result, error) {
	if _, skip := uncachedOps[op]; skip {
		return c.inner.Select(ctx, op, encodedQuery) //nolint:wrapcheck // transparent decorator
	}

	key := c.cacheKey(encodedQuery)

	if res, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return res, nil
	}

	c.incCache("miss")

	res, err := c.inner.Select(ctx, op, encodedQuery)
	if err != nil {
		return result.Result{}, fmt.Errorf("select %s: %w", op, err)
	}

	c.putToCache(ctx, key, res)
	return res, nil
}

func (c *CachedGateway) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedGateway) cacheKey(encodedQuery string) string {
	h := sha256.Sum256([]byte(encodedQuery))
	return KeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedGateway) getFromCache(ctx context.Context, key string) (result.Result, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached response", zap.String("key", key), zap.Error(err))
		}
		return result.Result{}, false
	}
	if len(data) == 0 {
		return result.Result{}, false
	}

	var cr cachedResult
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&cr); err != nil {
		c.logger.Warn("Failed to parse cached response", zap.String("key", key), zap.Error(err))
		return result.Result{}, false
	}
	if cr.Docs == nil {
		cr.Docs = []document.Document{}
	}

	return result.New(cr.Docs, cr.NumFound), true
}

func (c *CachedGateway) putToCache(ctx context.Context, key string, res result.Result) {
	data, err := json.Marshal(cachedResult{NumFound: res.NumFound(), Docs: res.Docs()})
	if err != nil {
		c.logger.Warn("Failed to encode response for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
	}
}
