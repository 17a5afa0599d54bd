package rentdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/rentdex/internal/db"
	dbPostgres "github.com/kailas-cloud/rentdex/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/rentdex/internal/db/redis"
	"github.com/kailas-cloud/rentdex/internal/domain"
	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
	"github.com/kailas-cloud/rentdex/internal/domain/search/query"
	"github.com/kailas-cloud/rentdex/internal/domain/search/result"
	"github.com/kailas-cloud/rentdex/internal/fuzzy"
	catalogrepo "github.com/kailas-cloud/rentdex/internal/repository/catalog"
	"github.com/kailas-cloud/rentdex/internal/repository/snapshot"
	healthuc "github.com/kailas-cloud/rentdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/rentdex/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces swapped out in tests.
type searchUseCase interface {
	Search(ctx context.Context, p query.Params) (result.Page, error)
	InvalidateIndex(ctx context.Context) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Client is the rentdex entry point. It is safe for concurrent use.
type Client struct {
	database  pinger
	closers   []func()
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client, connects to the catalog database and, if configured,
// the snapshot cache. The provided context bounds the readiness checks.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.dsn == "" {
		return nil, errors.New("rentdex: database dsn required (use WithPostgres)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	pg, err := dbPostgres.NewStore(ctx, dbPostgres.Config{
		DSN:      cfg.dsn,
		MaxConns: cfg.maxConns,
		MinConns: cfg.minConns,
	})
	if err != nil {
		return nil, fmt.Errorf("rentdex: create database pool: %w", err)
	}
	c := &Client{database: pg, closers: []func(){pg.Close}, obs: obs}

	if err := pg.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		c.Close()
		return nil, fmt.Errorf("rentdex: database not ready: %w", err)
	}
	if cfg.migrate {
		if _, err := pg.Migrate(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("rentdex: migrate: %w", err)
		}
	}

	// Keep kv a nil interface when the cache is disabled.
	var kv db.KVStore
	var cachePinger healthuc.Pinger
	if len(cfg.cacheAddrs) > 0 {
		cache, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("rentdex: create cache client: %w", err)
		}
		c.closers = append(c.closers, cache.Close)
		if err := cache.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
			c.Close()
			return nil, fmt.Errorf("rentdex: cache not ready: %w", err)
		}
		kv = cache
		cachePinger = cache
	}

	c.wire(catalogrepo.New(pg.Pool()), kv, cfg)
	c.healthSvc = healthuc.New(pg, cachePinger)
	return c, nil
}

// catalogStore is the catalog repository as the client consumes it.
type catalogStore interface {
	searchuc.CatalogQuerier
	All(ctx context.Context) ([]catalog.Item, error)
}

func (c *Client) wire(repo catalogStore, kv db.KVStore, cfg *clientConfig) {
	snaps := snapshot.New(repo, kv, cfg.snapshotTTL, c.obs.snapshotCounter(), zap.NewNop())

	fb := fuzzy.NewBuilder(fuzzy.Options{})
	builder := searchuc.IndexBuilderFunc(func(items []catalog.Item) searchuc.FuzzyIndex {
		return fb.Build(items)
	})

	c.searchSvc = searchuc.New(repo, snaps, builder, domain.SearchConfig{
		Staleness:   cfg.staleness,
		SnapshotTTL: cfg.snapshotTTL,
	})
}

// Close releases all connections.
func (c *Client) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.database.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search runs q and returns one page of results. Invalid queries fail with
// ErrInvalidQuery before touching the database.
func (c *Client) Search(ctx context.Context, q Query) (res Result, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("search", start, err,
			"text", q.Text,
			"total", res.Pagination.Total,
		)
	}()

	return c.searchSvc.Search(ctx, q)
}

// InvalidateIndex discards the fuzzy index and the cached snapshot so the
// next search rebuilds from the database. Call it after catalog mutations.
func (c *Client) InvalidateIndex(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("invalidate_index", start, err) }()

	return c.searchSvc.InvalidateIndex(ctx)
}
