// cmd/advisor/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"livestock-advisor/internal/clarify"
	"livestock-advisor/internal/common/config"
	"livestock-advisor/internal/common/database"
	"livestock-advisor/internal/common/logger"
	"livestock-advisor/internal/common/observability"
	"livestock-advisor/internal/completeness"
	"livestock-advisor/internal/contextstore"
	"livestock-advisor/internal/entity"
	"livestock-advisor/internal/intent"
	"livestock-advisor/internal/perfstore"
	"livestock-advisor/internal/pipeline"
	"livestock-advisor/internal/retrieval"
	"livestock-advisor/internal/strategy"
	"livestock-advisor/internal/synthesis"
	"livestock-advisor/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	zapLog.Info("Starting advisor...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Component logger honors the configured level and format; the console
	// bootstrap logger above stays for wiring and fatal paths.
	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)

	obs := observability.New("advisor")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry; sessions fall back to in-memory ---
	var sessionRepo contextstore.Repository
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redisClient.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Warn("redis unavailable, sessions will not survive restarts", zap.Error(err))
		sessionRepo = contextstore.NewMemoryRepository()
	} else {
		defer redisClient.Close()
		sessionRepo = contextstore.NewRedisRepository(redisClient.Client)
		zapLog.Info("Redis connected successfully")
	}

	// --- Init Elasticsearch with retry; narrative search is optional ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 5, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Warn("elasticsearch unavailable, answering from reference tables only", zap.Error(err))
		esClient = nil
	} else {
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Intent taxonomy ---
	// Load only errors for an explicitly configured file; a broken taxonomy
	// is invalid startup configuration and must not be papered over.
	reg, err := registry.Load(cfg.Intents.RegistryPath)
	if err != nil {
		zapLog.Fatal("intent registry invalid",
			zap.Error(err), zap.String("path", cfg.Intents.RegistryPath))
	}

	// --- Session context store ---
	contexts := contextstore.New(
		sessionRepo,
		time.Duration(cfg.Session.TTLSeconds)*time.Second,
		time.Duration(cfg.Session.SweepIntervalSeconds)*time.Second,
		log,
	)
	contexts.StartSweeper()
	defer contexts.Close()

	// --- Performance reference tables ---
	perfLoader := perfstore.NewPostgresLoader(pg.DB, cfg.PerfStore.Table)
	perfStore := perfstore.NewStore(
		perfLoader,
		time.Duration(cfg.PerfStore.CacheTTLSeconds)*time.Second,
		log,
	)

	// --- Retrieval sources ---
	sources := []retrieval.Source{
		retrieval.NewPerfTableSource(perfStore, "perf-tables"),
	}
	if esClient != nil {
		sources = append(sources, retrieval.NewESSource(
			esClient.Client, "species-docs", cfg.Retrieval.SpeciesIndex, "",
		))
	}
	if cfg.Retrieval.KnowledgeBasePath != "" && cfg.Synthesis.APIKey != "" {
		vec, err := retrieval.NewVectorSource(
			"knowledge-base", "",
			cfg.Retrieval.KnowledgeBasePath, "guides",
			retrieval.OpenAIEmbedding(cfg.Synthesis.APIKey, cfg.Synthesis.BaseURL, ""),
		)
		if err != nil {
			zapLog.Warn("knowledge base unavailable", zap.Error(err))
		} else {
			sources = append(sources, vec)
		}
	}
	engine := retrieval.NewEngine(
		sources,
		cfg.Retrieval.TopK,
		time.Duration(cfg.Retrieval.SourceTimeoutSeconds)*time.Second,
		log,
	)

	// --- Synthesis chain ---
	var primary synthesis.Synthesizer
	if cfg.Synthesis.APIKey != "" {
		primary = synthesis.NewOpenAISynthesizer(
			cfg.Synthesis.APIKey,
			cfg.Synthesis.BaseURL,
			cfg.Synthesis.Model,
			cfg.Synthesis.MaxTokens,
			float32(cfg.Synthesis.Temperature),
		)
	} else {
		zapLog.Warn("no completion API key configured, using rule-based synthesis only")
	}
	chain := synthesis.NewChain(primary, synthesis.NewRuleBasedSynthesizer(), log)

	// --- Resolver ---
	resolver := pipeline.NewResolver(pipeline.Deps{
		Extractor:         entity.NewExtractor(),
		Normalizer:        entity.NewNormalizer(log),
		Classifier:        intent.NewClassifier(reg, log),
		Contexts:          contexts,
		Completeness:      completeness.NewEvaluator(reg),
		Selector:          strategy.NewSelector(reg),
		Clarifier:         clarify.NewGenerator(reg),
		Retrieval:         engine,
		Synthesizer:       chain,
		Registry:          reg,
		Logger:            log,
		QuestionTimeout:   time.Duration(cfg.Pipeline.QuestionTimeoutSeconds) * time.Second,
		MaxClarifications: cfg.Pipeline.MaxClarifications,
	})
	zapLog.Info("Resolution pipeline assembled",
		zap.Int("sources", len(sources)),
		zap.Int("intents", len(reg.All())),
	)

	// --- HTTP API ---
	http.HandleFunc("/api/v1/resolve", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}

		var q pipeline.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if q.SessionID == "" || q.Text == "" {
			writeJSONError(w, http.StatusBadRequest, "sessionId and text are required")
			return
		}

		started := time.Now()
		resp, err := resolver.Resolve(r.Context(), q)
		if err != nil {
			log.Error("resolution failed", map[string]interface{}{
				"sessionId": q.SessionID,
				"error":     err.Error(),
			})
			writeJSONError(w, http.StatusGatewayTimeout, "question resolution timed out")
			return
		}
		obs.RecordQuestionProcessed(r.Context(), string(resp.Strategy))
		obs.RecordResolutionDuration(r.Context(), time.Since(started), string(resp.Strategy))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	})

	http.HandleFunc("/api/v1/sessions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			writeJSONError(w, http.StatusMethodNotAllowed, "DELETE required")
			return
		}
		sessionID := r.URL.Path[len("/api/v1/sessions/"):]
		if sessionID == "" {
			writeJSONError(w, http.StatusBadRequest, "session id required")
			return
		}
		if err := contexts.Clear(r.Context(), sessionID); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to clear session")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	http.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := pg.Ping(r.Context()); err != nil {
			writeJSONError(w, http.StatusServiceUnavailable, "postgres unreachable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	http.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zapLog.Info("Advisor API listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("API server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down API server", zap.Error(err))
	}

	zapLog.Info("Advisor stopped gracefully")
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
