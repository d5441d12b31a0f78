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
	"go.uber.org/zap"

	"github.com/kailas-cloud/kindermatch/internal/config"
	dbRedis "github.com/kailas-cloud/kindermatch/internal/db/redis"
	logpkg "github.com/kailas-cloud/kindermatch/internal/logger"
	"github.com/kailas-cloud/kindermatch/internal/metrics"
	catalogrepo "github.com/kailas-cloud/kindermatch/internal/repository/catalog"
	resultsrepo "github.com/kailas-cloud/kindermatch/internal/repository/results"
	chiTransport "github.com/kailas-cloud/kindermatch/internal/transport/chi"
	openaiAdvisor "github.com/kailas-cloud/kindermatch/internal/transport/openai"
	"github.com/kailas-cloud/kindermatch/internal/transport/sheets"
	advicetuc "github.com/kailas-cloud/kindermatch/internal/usecase/advice"
	healthuc "github.com/kailas-cloud/kindermatch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/kindermatch/internal/usecase/search"
	"github.com/kailas-cloud/kindermatch/internal/version"
)

func main() {
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

	logger.Info("Starting kindermatch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("scorer_model", cfg.Scorer.Model),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register advisor metrics explicitly (no init())
	metrics.RegisterAdvisorMetrics()

	// Catalog: Google Sheets source behind an in-memory TTL snapshot cache.
	source := sheets.NewSource(&sheets.Config{
		BaseURL:   cfg.Catalog.BaseURL,
		SheetID:   cfg.Catalog.SheetID,
		SheetName: cfg.Catalog.SheetName,
		Timeout:   time.Duration(cfg.Catalog.TimeoutSec) * time.Second,
		Logger:    logger,
	})
	catalog := catalogrepo.New(source, time.Duration(cfg.Catalog.CacheTTLSec)*time.Second, logger)

	// Advisor is optional: without a credential, unscored searches still work
	// and scoring requests report a distinct "not configured" condition.
	var advisor *openaiAdvisor.Advisor
	if cfg.Scorer.APIKey != "" {
		advisor = openaiAdvisor.NewAdvisor(&openaiAdvisor.Config{
			APIKey:      cfg.Scorer.APIKey,
			BaseURL:     cfg.Scorer.BaseURL,
			Model:       cfg.Scorer.Model,
			Temperature: cfg.Scorer.Temperature,
			MaxTokens:   cfg.Scorer.MaxTokens,
			Timeout:     time.Duration(cfg.Scorer.TimeoutSec) * time.Second,
			Logger:      logger,
		})
		logger.Info("Compatibility scorer configured",
			zap.String("base_url", cfg.Scorer.BaseURL),
			zap.String("model", cfg.Scorer.Model),
		)
	} else {
		logger.Warn("No scorer api_key configured; personality scoring disabled")
	}

	// Pass nil interface (not typed nil pointer!) if the advisor is not
	// configured. Go gotcha: (*Advisor)(nil) wrapped in Scorer != nil.
	var scorer searchuc.Scorer
	var adviceAdvisor advicetuc.Advisor
	var advisorChecker healthuc.AdvisorChecker
	if advisor != nil {
		scorer = advisor
		adviceAdvisor = advisor
		advisorChecker = advisor
	}

	resultStore := resultsrepo.New(store, cfg.Results.KeyPrefix, time.Duration(cfg.Results.TTLSec)*time.Second)

	// Create use case services
	searchSvc := searchuc.New(catalog, scorer, resultStore).
		WithConcurrency(cfg.Scorer.MaxConcurrent).
		WithScoreTimeout(time.Duration(cfg.Scorer.TimeoutSec) * time.Second).
		WithRateLimit(cfg.Scorer.RatePerSec, cfg.Scorer.RateBurst)
	adviceSvc := advicetuc.New(adviceAdvisor)
	healthSvc := healthuc.New(store, source, advisorChecker)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, adviceSvc, catalog, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

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
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
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

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
