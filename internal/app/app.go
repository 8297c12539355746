package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/draftedge/draftedge/external/gemini"
	"github.com/draftedge/draftedge/external/sleeper"
	"github.com/draftedge/draftedge/internal/config"
	"github.com/draftedge/draftedge/internal/infrastructure/feed"
	"github.com/draftedge/draftedge/internal/interfaces/httpapi"
	"github.com/draftedge/draftedge/internal/platform/cache"
	"github.com/draftedge/draftedge/internal/platform/logging"
	"github.com/draftedge/draftedge/internal/platform/resilience"
	"github.com/draftedge/draftedge/internal/platform/snapshot"
	"github.com/draftedge/draftedge/internal/usecase"
)

// App bundles the composed service: the HTTP server plus the pieces the
// process lifecycle needs to drive directly.
type App struct {
	Server  *http.Server
	Refresh *usecase.RefreshService
	Pool    *ants.Pool
}

func New(cfg config.Config, logger *logging.Logger, accessLogger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	pool, err := ants.NewPool(cfg.RefreshWorkers)
	if err != nil {
		return nil, fmt.Errorf("create refresh worker pool: %w", err)
	}

	feeds := feed.NewDownloader(feed.DownloaderConfig{
		HTTPClient: tracedHTTPClient(cfg.FeedTimeout),
		BaseURL:    cfg.FeedBaseURL,
		Timeout:    cfg.FeedTimeout,
		MaxRetries: cfg.FeedMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FeedCircuitEnabled,
			FailureThreshold: cfg.FeedCircuitFailureCount,
			OpenTimeout:      cfg.FeedCircuitOpenTimeout,
			ProbeBudget:      cfg.FeedCircuitHalfOpenMaxReq,
		},
	})

	sleeperClient := sleeper.NewClient(sleeper.ClientConfig{
		HTTPClient: tracedHTTPClient(cfg.SleeperTimeout),
		BaseURL:    cfg.SleeperBaseURL,
		Timeout:    cfg.SleeperTimeout,
		MaxRetries: cfg.SleeperMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SleeperCircuitEnabled,
			FailureThreshold: cfg.SleeperCircuitFailureCount,
			OpenTimeout:      cfg.SleeperCircuitOpenTimeout,
			ProbeBudget:      cfg.SleeperCircuitHalfOpenMax,
		},
	})

	geminiClient := gemini.NewClient(gemini.ClientConfig{
		HTTPClient: tracedHTTPClient(cfg.GeminiTimeout),
		BaseURL:    cfg.GeminiBaseURL,
		Model:      cfg.GeminiModel,
		Timeout:    cfg.GeminiTimeout,
		MaxRetries: cfg.GeminiMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.GeminiCircuitEnabled,
			FailureThreshold: cfg.GeminiCircuitFailureCount,
			OpenTimeout:      cfg.GeminiCircuitOpenTimeout,
			ProbeBudget:      cfg.GeminiCircuitHalfOpenMax,
		},
	})

	store := &snapshot.Store[usecase.DataSnapshot]{}
	analysisCache := cache.NewStore(cfg.AnalysisCacheTTL)

	refreshSvc := usecase.NewRefreshService(usecase.RefreshServiceConfig{
		Feeds:          feeds,
		Directory:      sleeperClient,
		Store:          store,
		AnalysisCache:  analysisCache,
		Logger:         logger,
		Pool:           pool,
		TrendingWindow: cfg.TrendingLookbackHours,
		TrendingLimit:  cfg.TrendingLimit,
	})
	playerSvc := usecase.NewPlayerService(store, logger)
	analysisSvc := usecase.NewAnalysisService(store, geminiClient, analysisCache, logger)

	handler := httpapi.NewHandler(playerSvc, analysisSvc, refreshSvc, accessLogger)
	router := httpapi.NewRouter(handler, accessLogger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		pool.Release()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:  server,
		Refresh: refreshSvc,
		Pool:    pool,
	}, nil
}

// tracedHTTPClient instruments outbound calls so upstream latency shows up
// in the request trace.
func tracedHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
