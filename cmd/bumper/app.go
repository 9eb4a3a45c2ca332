package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bumper/internal/config"
	"github.com/kailas-cloud/bumper/internal/db"
	dbRedis "github.com/kailas-cloud/bumper/internal/db/redis"
	"github.com/kailas-cloud/bumper/internal/domain/search/query"
	"github.com/kailas-cloud/bumper/internal/metrics"
	"github.com/kailas-cloud/bumper/internal/repository/respcache"
	"github.com/kailas-cloud/bumper/internal/transport/solr"
	healthuc "github.com/kailas-cloud/bumper/internal/usecase/health"
	reportuc "github.com/kailas-cloud/bumper/internal/usecase/report"
	"github.com/kailas-cloud/bumper/internal/version"
)

// app is the composition root shared by all commands.
type app struct {
	store   db.Store // nil when the cache is disabled
	reports *reportuc.Service
	health  *healthuc.Service
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	composer, err := query.New(query.Config{
		SortField:         cfg.Solr.SortField,
		SortOrder:         cfg.Solr.SortOrder,
		LanguageAttribute: cfg.Solr.LanguageAttribute,
		DatasetAttribute:  cfg.Solr.DatasetAttribute,
		FixRows:           cfg.Solr.FixRows,
	})
	if err != nil {
		return nil, fmt.Errorf("query composer: %w", err)
	}

	backend, err := solr.NewClient(&solr.Config{
		BaseURL:   cfg.Solr.BaseURL,
		Timeout:   cfg.Solr.Timeout(),
		UserAgent: "bumper/" + version.Version,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("search backend: %w", err)
	}

	a := &app{}
	var gateway reportuc.Gateway = backend
	// Pass nil interface (not typed nil pointer) when the cache is disabled.
	var cachePinger healthuc.CachePinger

	if cfg.Cache.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		timeout := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		logger.Info("Connected to response cache", zap.Strings("addrs", cfg.Cache.Addrs))

		gateway = respcache.New(backend, store, cfg.Cache.TTL(), metrics.ResponseCacheTotal, logger)
		a.store = store
		cachePinger = store
	}

	a.reports = reportuc.New(gateway, composer, cfg.Fixes.Concurrency)
	a.health = healthuc.New(backend, cachePinger)
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
}
