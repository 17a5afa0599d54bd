package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rentdex/internal/config"
	"github.com/kailas-cloud/rentdex/internal/db"
	dbPostgres "github.com/kailas-cloud/rentdex/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/rentdex/internal/db/redis"
	"github.com/kailas-cloud/rentdex/internal/domain"
	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
	"github.com/kailas-cloud/rentdex/internal/fuzzy"
	logpkg "github.com/kailas-cloud/rentdex/internal/logger"
	"github.com/kailas-cloud/rentdex/internal/metrics"
	catalogrepo "github.com/kailas-cloud/rentdex/internal/repository/catalog"
	"github.com/kailas-cloud/rentdex/internal/repository/snapshot"
	"github.com/kailas-cloud/rentdex/internal/transport/api"
	chiTransport "github.com/kailas-cloud/rentdex/internal/transport/chi"
	healthuc "github.com/kailas-cloud/rentdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/rentdex/internal/usecase/search"
	"github.com/kailas-cloud/rentdex/internal/version"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting rentdex API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("cache_enabled", cfg.Cache.Enabled()),
		zap.Strings("cache_addrs", cfg.Cache.Addrs),
	)

	ctx := context.Background()
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	pg, err := dbPostgres.NewStore(ctx, dbPostgres.Config{
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pg.Close()

	if err := pg.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	if cfg.Database.Migrate {
		applied, err := pg.Migrate(ctx)
		if err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		logger.Info("Migrations applied", zap.Int("count", applied))
	}

	// Pass nil interfaces (not typed nil pointers) when the cache is disabled.
	// Go gotcha: (*dbRedis.Store)(nil) wrapped in db.KVStore != nil.
	var (
		kv          db.KVStore
		cachePinger healthuc.Pinger
	)
	if cfg.Cache.Enabled() {
		cache, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache client", zap.Error(err))
		}
		defer cache.Close()

		if err := cache.WaitForReady(ctx, readiness); err != nil {
			// Snapshot reads degrade to the database while the cache is down.
			logger.Warn("Cache not ready, continuing without it until it recovers", zap.Error(err))
		} else {
			logger.Info("Connected to cache")
		}
		kv = cache
		cachePinger = cache
	}

	// Register metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterHTTPMetrics()

	catalogRepo := catalogrepo.New(pg.Pool(), catalogrepo.WithLogger(logger))
	snapshots := snapshot.New(catalogRepo, kv, cfg.SnapshotTTL(), metrics.SnapshotCacheTotal, logger)

	fuzzyBuilder := fuzzy.NewBuilder(fuzzy.Options{})
	builder := searchuc.IndexBuilderFunc(func(items []catalog.Item) searchuc.FuzzyIndex {
		return fuzzyBuilder.Build(items)
	})

	searchSvc := searchuc.New(catalogRepo, snapshots, builder,
		domain.SearchConfig{Staleness: cfg.Staleness(), SnapshotTTL: cfg.SnapshotTTL()},
		searchuc.WithMetrics(metrics.DefaultSearch()),
	)
	healthSvc := healthuc.New(pg, cachePinger)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(chiTransport.RateLimitMiddleware(chiTransport.RateLimitConfig{
		RequestsPerSecond: cfg.HTTP.RateLimit.RequestsPerSec,
		Burst:             cfg.HTTP.RateLimit.Burst,
	}))
	r.Use(metrics.Middleware())
	api.HandlerWithOptions(server, api.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: chiTransport.ParamErrorHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(api.ErrorResponse{
						Code:    api.ErrorResponseCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)
			ctx, event := logpkg.ContextWithEvent(ctx)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request", append(event.Fields(),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)...)
		})
	}
}
