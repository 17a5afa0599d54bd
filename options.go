package rentdex

import (
	"log/slog"
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
	dsn      string
	maxConns int32
	minConns int32
	migrate  bool

	cacheAddrs    []string
	cachePassword string

	staleness        time.Duration
	snapshotTTL      time.Duration
	readinessTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithPostgres sets the catalog database DSN. Required.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dsn = dsn
	})
}

// WithPoolSize bounds the database connection pool. Defaults: 25 max, 5 min.
func WithPoolSize(maxConns, minConns int32) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxConns = maxConns
		c.minConns = minConns
	})
}

// WithMigrations applies the embedded catalog schema on startup.
func WithMigrations() Option {
	return optionFunc(func(c *clientConfig) {
		c.migrate = true
	})
}

// WithRedis enables the shared snapshot cache on a Redis instance.
// Without it every index rebuild reads the full catalog from the database.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
	})
}

// WithStaleness sets how old the fuzzy index may get before the next search
// rebuilds it. Default: 5 minutes.
func WithStaleness(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.staleness = d
	})
}

// WithSnapshotTTL sets how long a catalog snapshot lives in the cache.
// Default: 30 minutes.
func WithSnapshotTTL(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.snapshotTTL = d
	})
}

// WithReadinessTimeout bounds the startup wait for the database and cache.
// Default: 10 seconds.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts, durations and
// snapshot cache results) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
