package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/rentdex/internal/domain"
	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
	"github.com/kailas-cloud/rentdex/internal/domain/search/query"
	"github.com/kailas-cloud/rentdex/internal/domain/search/result"
	"github.com/kailas-cloud/rentdex/internal/logger"
	"github.com/kailas-cloud/rentdex/internal/metrics"
)

// Service answers catalog searches by merging an exact store query with a fuzzy
// text index built from catalog snapshots.
type Service struct {
	catalog   CatalogQuerier
	snapshots SnapshotSource
	index     *indexHolder
	metrics   *metrics.Search
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for staleness and elapsed time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records searches and index rebuilds into m.
func WithMetrics(m *metrics.Search) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a search service. A non-positive cfg.Staleness falls back to the default.
func New(cat CatalogQuerier, snaps SnapshotSource, builder IndexBuilder, cfg domain.SearchConfig, opts ...Option) *Service {
	if cfg.Staleness <= 0 {
		cfg.Staleness = domain.DefaultSearchConfig().Staleness
	}
	s := &Service{catalog: cat, snapshots: snaps, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	s.index = newIndexHolder(snaps, builder, cfg.Staleness, s.now, s.metrics)
	return s
}

// Search validates p, refreshes the index if needed, and returns one page of results.
func (s *Service) Search(ctx context.Context, p query.Params) (result.Page, error) {
	start := s.now()

	q, err := query.New(p)
	if err != nil {
		return result.Page{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	path := metrics.PathExact
	if q.HasText() {
		path = metrics.PathFuzzy
	}

	page, err := s.search(ctx, &q, start)
	s.observe(path, start, err)
	if err != nil {
		return result.Page{}, err
	}

	fields := []zap.Field{
		zap.String("search_path", path),
		zap.Int("total", page.Pagination.Total),
		zap.Int("exact_matches", page.Metadata.ExactMatches),
		zap.Int("fuzzy_matches", page.Metadata.FuzzyMatches),
	}
	logger.AddFields(ctx, fields...)
	logger.FromContext(ctx).Debug("Search completed", append(fields, zap.Duration("elapsed", page.Metadata.Elapsed))...)
	return page, nil
}

// InvalidateIndex drops the in-memory index and the cached snapshot. The
// in-memory index is dropped even when clearing the cache fails.
func (s *Service) InvalidateIndex(ctx context.Context) error {
	s.index.invalidate()
	if err := s.snapshots.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate index: %w", err)
	}
	logger.FromContext(ctx).Debug("Search index invalidated")
	return nil
}

func (s *Service) search(ctx context.Context, q *query.Query, start time.Time) (result.Page, error) {
	idx, err := s.index.get(ctx)
	if err != nil {
		return result.Page{}, err
	}

	var (
		merged []catalog.Item
		meta   result.Metadata
	)

	if q.HasText() {
		var (
			exact []catalog.Item
			hits  []result.Hit
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			items, err := s.catalog.Query(gctx, q.Filter())
			if err != nil {
				return dataAccess("exact query", err)
			}
			exact = items
			return nil
		})
		g.Go(func() error {
			hits = idx.Search(q.Text())
			return nil
		})
		if err := g.Wait(); err != nil {
			return result.Page{}, err
		}

		merged = merge(exact, hits, q.Filter().WithoutText())
		meta.ExactMatches = len(exact)
		meta.FuzzyMatches = len(hits)
	} else {
		items, err := s.catalog.Query(ctx, q.Filter())
		if err != nil {
			return result.Page{}, dataAccess("exact query", err)
		}
		merged = items
		meta.ExactMatches = len(items)
	}

	sortItems(merged, q.SortBy())

	items, pg := result.Paginate(merged, q.Page(), q.Limit())
	meta.TotalProcessed = len(merged)
	meta.Elapsed = s.now().Sub(start)

	return result.Page{Items: items, Pagination: pg, Metadata: meta}, nil
}

func (s *Service) observe(path string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.Requests.WithLabelValues(path, status).Inc()
	s.metrics.Duration.WithLabelValues(path).Observe(s.now().Sub(start).Seconds())
}

// dataAccess makes sure store failures carry domain.ErrDataAccess.
func dataAccess(op string, err error) error {
	if errors.Is(err, domain.ErrDataAccess) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrDataAccess, op, err)
}
