// Package snapshot serves the full catalog for index builds, cache-aside over a shared key-value store.
// Cached entries are zstd-compressed JSON.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rentdex/internal/db"
	"github.com/kailas-cloud/rentdex/internal/domain"
	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
)

// CacheKey is where the serialized catalog lives.
const CacheKey = domain.KeyPrefix + "catalog:snapshot"

// source reads the full catalog from the system of record.
type source interface {
	All(ctx context.Context) ([]catalog.Item, error)
}

// cache is the consumer interface for the snapshot cache (ISP).
type cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Provider returns catalog snapshots, preferring the cache.
type Provider struct {
	source     source
	cache      cache
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger

	// epoch is bumped by Invalidate. A store read that overlaps an
	// invalidation must not leave its result in the cache.
	epoch atomic.Uint64
}

// New creates a snapshot provider. c may be nil, in which case every call reads the store.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"error"), passed explicitly.
func New(
	src source,
	c cache,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Provider {
	if ttl <= 0 {
		ttl = domain.DefaultSearchConfig().SnapshotTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		source:     src,
		cache:      c,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Snapshot returns every catalog item. Cache failures degrade to a store read;
// store failures are returned wrapped in domain.ErrDataAccess.
func (p *Provider) Snapshot(ctx context.Context) ([]catalog.Item, error) {
	if items, ok := p.getFromCache(ctx); ok {
		p.incCache("hit")
		return items, nil
	}
	p.incCache("miss")

	epoch := p.epoch.Load()
	items, err := p.source.All(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrDataAccess) {
			return nil, fmt.Errorf("load catalog snapshot: %w", err)
		}
		return nil, fmt.Errorf("%w: load catalog snapshot: %w", domain.ErrDataAccess, err)
	}

	p.putToCache(ctx, items, epoch)
	return items, nil
}

// Invalidate drops the cached snapshot. A missing key is not an error.
func (p *Provider) Invalidate(ctx context.Context) error {
	p.epoch.Add(1)
	if p.cache == nil {
		return nil
	}
	if err := p.cache.Del(ctx, CacheKey); err != nil && !errors.Is(err, db.ErrKeyNotFound) {
		return fmt.Errorf("%w: invalidate snapshot: %w", domain.ErrDataAccess, err)
	}
	return nil
}

func (p *Provider) incCache(result string) {
	if p.cacheTotal != nil {
		p.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (p *Provider) getFromCache(ctx context.Context) ([]catalog.Item, bool) {
	if p.cache == nil {
		return nil, false
	}
	data, err := p.cache.Get(ctx, CacheKey)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			p.incCache("error")
			p.logger.Warn("Failed to get cached snapshot", zap.String("key", CacheKey), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	items, err := decodeSnapshot(data)
	if err != nil {
		p.incCache("error")
		p.logger.Warn("Failed to decode cached snapshot", zap.String("key", CacheKey), zap.Error(err))
		return nil, false
	}
	return items, true
}

// putToCache stores items read at epoch. It skips the write when an
// invalidation has happened since, and undoes it when one lands mid-write.
func (p *Provider) putToCache(ctx context.Context, items []catalog.Item, epoch uint64) {
	if p.cache == nil || p.epoch.Load() != epoch {
		return
	}
	data, err := encodeSnapshot(items)
	if err != nil {
		p.incCache("error")
		p.logger.Warn("Failed to encode snapshot", zap.Error(err))
		return
	}
	if err := p.cache.SetWithTTL(ctx, CacheKey, data, p.ttl); err != nil {
		p.incCache("error")
		p.logger.Warn("Failed to cache snapshot", zap.String("key", CacheKey), zap.Error(err))
		return
	}
	if p.epoch.Load() != epoch {
		if err := p.cache.Del(ctx, CacheKey); err != nil && !errors.Is(err, db.ErrKeyNotFound) {
			p.incCache("error")
			p.logger.Warn("Failed to drop superseded snapshot", zap.String("key", CacheKey), zap.Error(err))
		}
	}
}
