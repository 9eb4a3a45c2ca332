package respcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bumper/internal/db"
	"github.com/kailas-cloud/bumper/internal/domain/search/result"
)

type mockGateway struct {
	result result.Result
	err    error
	calls  int
	lastOp string
}

func (m *mockGateway) Select(_ context.Context, op, _ string) (result.Result, error) {
	m.calls++
	m.lastOp = op
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedGateway(t *testing.T, inner *mockGateway) (*CachedGateway, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cg := New(inner, ms, time.Hour, nil, zap.NewNop())
	return cg, ms
}
