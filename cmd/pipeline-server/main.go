// cmd/pipeline-server/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"creative-pipeline/internal/cache"
	"creative-pipeline/internal/common/config"
	"creative-pipeline/internal/common/database"
	"creative-pipeline/internal/common/errors"
	"creative-pipeline/internal/common/logger"
	"creative-pipeline/internal/common/validation"
	"creative-pipeline/internal/learning"
	"creative-pipeline/internal/models"
	"creative-pipeline/internal/pipeline"
	"creative-pipeline/internal/validators"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting pipeline server", map[string]interface{}{
		"name":        cfg.App.Name,
		"environment": cfg.App.Environment,
		"cacheStore":  cfg.Cache.Store,
	})

	var db *sql.DB
	var redisClient *redis.Client

	if cfg.Cache.Store == "postgres" || cfg.Learning.Persist {
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return pg.Ping(ctx)
		}, 5, log)
		if err != nil {
			log.Error("postgres unavailable", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
		db = pg.GetDB()
		defer pg.Close()
	}

	if cfg.Cache.Store == "redis" {
		var rc *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return rc.Ping(ctx)
		}, 5, log)
		if err != nil {
			log.Error("redis unavailable", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
		redisClient = rc.GetClient()
		defer rc.Close()
	}

	var durable cache.DurableStore
	switch cfg.Cache.Store {
	case "postgres":
		durable = cache.NewPostgresStore(db)
	case "redis":
		durable = cache.NewRedisStore(redisClient)
	}

	resultCache := cache.New(durable, cache.Options{
		TTL:               config.GetDuration(cfg.Cache.TTL),
		CostPerGeneration: cfg.Cache.CostPerGeneration,
	}, log)

	var store learning.Store
	if cfg.Learning.Persist && db != nil {
		pgStore := learning.NewPostgresStore(db, cfg.Learning.ConfidenceSaturation, log)
		loadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pgStore.Load(loadCtx); err != nil {
			log.Warn("learning history load failed, starting cold", map[string]interface{}{
				"error": err.Error(),
			})
		}
		cancel()
		store = pgStore
	} else {
		store = learning.NewMemoryStore(cfg.Learning.ConfidenceSaturation)
	}

	var semantic validators.SemanticAnnotator
	var pixel validators.PixelAnnotator
	var ocr validators.OCREngine
	if cfg.Validators.Semantic.Enabled && cfg.Validators.Semantic.Endpoint != "" {
		annotator := validators.NewHTTPAnnotatorClient(cfg.Validators.Semantic)
		semantic = annotator.SemanticAnnotator()
		pixel = annotator.PixelAnnotator()
		ocr = annotator.OCREngine()
	} else {
		log.Warn("annotation backend not configured, scoring degrades to the size heuristic", map[string]interface{}{
			"enabled": cfg.Validators.Semantic.Enabled,
		})
	}

	var fallback pipeline.Invoker
	if cfg.Generation.FallbackEndpoint != "" {
		fallbackCfg := cfg.Generation
		fallbackCfg.Endpoint = cfg.Generation.FallbackEndpoint
		if cfg.Generation.FallbackModel != "" {
			fallbackCfg.DefaultModel = cfg.Generation.FallbackModel
		}
		fallback = pipeline.NewHTTPInvoker(fallbackCfg)
	}

	pipe := pipeline.New(cfg.Pipeline, cfg.Generation, cfg.Validators, pipeline.Deps{
		Cache:    resultCache,
		Invoker:  pipeline.NewHTTPInvoker(cfg.Generation),
		Fallback: fallback,
		Semantic: semantic,
		Pixel:    pixel,
		OCR:      ocr,
		Learning: store,
		Logger:   log,
	})

	// Background purge keeps both cache tiers from accumulating expired
	// rows that are never read again.
	purgeCtx, stopPurge := context.WithCancel(context.Background())
	go runCachePurge(purgeCtx, resultCache, config.GetDuration(cfg.Cache.PurgeInterval), log)

	server := newHTTPServer(cfg, pipe, resultCache, store, log)

	go func() {
		log.Info("http server listening", map[string]interface{}{"port": cfg.Server.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down", nil)
	stopPurge()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown incomplete", map[string]interface{}{"error": err.Error()})
	}
	log.Info("shutdown complete", nil)
}

func retryWithBackoff(operation func() error, maxRetries int, log logger.Logger) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = operation(); err == nil {
			return nil
		}
		wait := time.Duration(attempt) * 2 * time.Second
		log.Warn("operation failed, retrying", map[string]interface{}{
			"attempt": attempt,
			"wait":    wait.String(),
			"error":   err.Error(),
		})
		time.Sleep(wait)
	}
	return err
}

func runCachePurge(ctx context.Context, c *cache.Cache, interval time.Duration, log logger.Logger) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := c.PurgeExpired(ctx)
			if removed > 0 {
				log.Debug("purged expired cache entries", map[string]interface{}{"removed": removed})
			}
		}
	}
}

type generatePayload struct {
	models.Request
	QualityThreshold float64 `json:"qualityThreshold,omitempty"`
	MaxAttempts      int     `json:"maxAttempts,omitempty"`
	SkipCache        bool    `json:"skipCache,omitempty"`
}

func newHTTPServer(cfg *config.Config, pipe *pipeline.Pipeline, resultCache *cache.Cache, store learning.Store, log logger.Logger) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "unreadable body", http.StatusBadRequest)
			return
		}

		check, err := validation.ValidateGenerateRequest(body)
		if err != nil {
			http.Error(w, "validation error", http.StatusInternalServerError)
			return
		}
		if !check.Valid {
			writeJSON(w, http.StatusBadRequest, check)
			return
		}

		var payload generatePayload
		if err := json.Unmarshal(body, &payload); err != nil {
			http.Error(w, "malformed json", http.StatusBadRequest)
			return
		}

		result, err := pipe.Process(r.Context(), &payload.Request, pipeline.Options{
			QualityThreshold: payload.QualityThreshold,
			MaxAttempts:      payload.MaxAttempts,
			SkipCache:        payload.SkipCache,
		})
		if err != nil {
			stdErr := errors.Normalize(err)
			log.Error("pipeline request failed", map[string]interface{}{
				"code":     string(stdErr.Code),
				"category": errors.GetErrorCategory(stdErr.Code),
				"error":    stdErr.Error(),
			})
			writeJSON(w, statusForError(stdErr), stdErr)
			return
		}

		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("/v1/cache/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, resultCache.Stats())
	})

	mux.HandleFunc("/v1/learning/insights", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.Insights())
	})

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: mux,
	}
}

// statusForError maps the error taxonomy onto HTTP: caller mistakes are
// 4xx, transient infrastructure failures invite a retry with 503.
func statusForError(stdErr *errors.StandardError) int {
	switch {
	case errors.GetErrorCategory(stdErr.Code) == "INPUT":
		return http.StatusBadRequest
	case errors.IsRetryableErrorCode(stdErr.Code):
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
