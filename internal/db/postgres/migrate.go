package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/kailas-cloud/rentdex/internal/db"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrations returns the embedded goose migrations rooted at their directory.
func migrations() (fs.FS, error) {
	return fs.Sub(migrationFiles, "migrations")
}

// Migrate applies pending embedded migrations, each in its own transaction.
// It returns the number of migrations applied.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	fsys, err := migrations()
	if err != nil {
		return 0, &db.Error{Op: db.OpMigrate, Err: err}
	}

	sqlDB := stdlib.OpenDBFromPool(s.pool)
	defer func() { _ = sqlDB.Close() }()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys)
	if err != nil {
		return 0, &db.Error{Op: db.OpMigrate, Err: fmt.Errorf("create provider: %w", err)}
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return len(results), &db.Error{Op: db.OpMigrate, Err: err}
	}
	return len(results), nil
}
