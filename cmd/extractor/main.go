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

	"github.com/suthipongg/service-sentence-extractor/internal/config"
	"github.com/suthipongg/service-sentence-extractor/internal/db"
	dbRedis "github.com/suthipongg/service-sentence-extractor/internal/db/redis"
	"github.com/suthipongg/service-sentence-extractor/internal/domain"
	logpkg "github.com/suthipongg/service-sentence-extractor/internal/logger"
	"github.com/suthipongg/service-sentence-extractor/internal/metrics"
	"github.com/suthipongg/service-sentence-extractor/internal/repository/docstore"
	"github.com/suthipongg/service-sentence-extractor/internal/repository/embcache"
	"github.com/suthipongg/service-sentence-extractor/internal/repository/searchindex"
	chiTransport "github.com/suthipongg/service-sentence-extractor/internal/transport/chi"
	openaiEmb "github.com/suthipongg/service-sentence-extractor/internal/transport/openai"
	extractoruc "github.com/suthipongg/service-sentence-extractor/internal/usecase/extractor"
	healthuc "github.com/suthipongg/service-sentence-extractor/internal/usecase/health"
	reportuc "github.com/suthipongg/service-sentence-extractor/internal/usecase/report"
	tokenizeruc "github.com/suthipongg/service-sentence-extractor/internal/usecase/tokenizer"
	"github.com/suthipongg/service-sentence-extractor/internal/version"
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

	logger.Info("Starting sentence extractor API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("docstore_path", cfg.DocumentStore.Path),
		zap.String("searchindex_path", cfg.SearchIndex.Path),
	)

	// Open the document store and the search index
	docs, err := docstore.Open(cfg.DocumentStore.Path, logger)
	if err != nil {
		logger.Fatal("Failed to open document store", zap.Error(err))
	}
	defer func() { _ = docs.Close() }()

	index, err := searchindex.Open(cfg.SearchIndex.Path, logger)
	if err != nil {
		logger.Fatal("Failed to open search index", zap.Error(err))
	}
	defer func() { _ = index.Close() }()

	// Optional embedding cache backend
	ctx := context.Background()
	var cache db.Store
	if len(cfg.Cache.Addrs) > 0 {
		cache, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cache.Close()

		if err := cache.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Register embedding metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()

	// Build encoder chain
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	logger.Info("Encoder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	var encoder domain.Encoder = base
	if cache != nil {
		ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
		encoder = embcache.New(base, cache, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	// Background counter increments for already-known sentences
	counters := extractoruc.NewCounterQueue(docs, index, cfg.Counter.QueueSize, logger)
	counters.Start()

	// Create use case services
	extractorSvc := extractoruc.New(docs, index, encoder, counters, logger)
	reportSvc := reportuc.New(index)
	// Token counting goes through the provider directly, never the cache.
	tokenizerSvc := tokenizeruc.New(base)
	healthSvc := healthuc.New(docs, index, base)

	// Create chi server
	server := chiTransport.NewServer(extractorSvc, reportSvc, tokenizerSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIToken))
	r.Use(metrics.Middleware())
	server.Mount(r)

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

	// Drain pending counter increments before closing the stores.
	counters.Stop()

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
						"detail": "Internal Server Error",
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

			// Canonical log line, one per request
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
