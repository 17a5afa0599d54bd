// Package catalog is the exact-filter query executor over the PostgreSQL catalog.
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rentdex/internal/db"
	"github.com/kailas-cloud/rentdex/internal/domain"
	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
	"github.com/kailas-cloud/rentdex/internal/domain/search/filter"
)

// querier is the consumer interface for the connection pool (ISP).
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repo runs catalog reads against the database.
type Repo struct {
	pool   querier
	logger *zap.Logger
}

// Option configures a Repo.
type Option func(*Repo)

// WithLogger reports rows skipped for breaking item invariants.
func WithLogger(l *zap.Logger) Option {
	return func(r *Repo) { r.logger = l }
}

// New creates a catalog repository. pool is typically a *pgxpool.Pool.
func New(pool querier, opts ...Option) *Repo {
	r := &Repo{pool: pool, logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Query returns every item satisfying spec, newest first.
func (r *Repo) Query(ctx context.Context, spec filter.Spec) ([]catalog.Item, error) {
	sql, args := buildQuery(spec)
	return r.list(ctx, sql, args)
}

// All returns the whole catalog, newest first.
func (r *Repo) All(ctx context.Context) ([]catalog.Item, error) {
	sql, args := buildQuery(filter.Spec{})
	return r.list(ctx, sql, args)
}

func (r *Repo) list(ctx context.Context, sql string, args []any) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrap(db.OpQuery, err)
	}
	defer rows.Close()

	items := make([]catalog.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, wrap(db.OpScan, err)
		}
		// Rows the schema should have rejected never reach search results.
		if err := it.Validate(); err != nil {
			r.logger.Warn("Skipping invalid catalog item", zap.String("id", it.ID), zap.Error(err))
			continue
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(db.OpQuery, err)
	}
	return items, nil
}

func wrap(op string, err error) error {
	return fmt.Errorf("%w: %w", domain.ErrDataAccess, &db.Error{Op: op, Err: err})
}
