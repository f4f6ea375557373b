package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TokenLens/riskgate/internal/analysis"
	"github.com/TokenLens/riskgate/internal/config"
	"github.com/TokenLens/riskgate/internal/handler"
	"github.com/TokenLens/riskgate/internal/market"
	"github.com/TokenLens/riskgate/internal/middleware"
	"github.com/TokenLens/riskgate/internal/pkg/logger"
	"github.com/TokenLens/riskgate/internal/provider"
	"github.com/TokenLens/riskgate/internal/repository"
	"github.com/TokenLens/riskgate/internal/resilience"
	"github.com/TokenLens/riskgate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)

	// 2. Initialize Persistence
	// Verdict store (Redis > Memory)
	var verdictStore service.VerdictStore
	if cfg.Redis.Addr != "" {
		redisClient, err := repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("Connected to Redis")
			verdictStore = redisClient
		} else {
			logger.Error("Failed to connect to Redis, falling back to memory", "error", err)
		}
	}
	if verdictStore == nil {
		verdictStore = repository.NewMemoryVerdictStore()
	}

	// Scan history (Postgres > Memory)
	var scanRepo service.ScanRepo
	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(cfg)
		if err == nil {
			logger.Info("Connected to PostgreSQL")
			scanRepo = repository.NewPostgresScanRepo(db)
		} else {
			logger.Error("Failed to connect to DB, scan history is memory-only", "error", err)
		}
	}
	if scanRepo == nil {
		scanRepo = repository.NewMemoryScanRepo()
	}

	var cleanup *repository.CleanupWorker
	if cleaner, ok := scanRepo.(repository.Cleaner); ok {
		cleanup = repository.StartCleanup(cleaner,
			cfg.Database.CleanupInterval(), cfg.Database.ScanRetention())
	}

	// 3. Resilience coordinator, the single shared instance
	coordinator := resilience.NewCoordinator(resilience.CoordinatorConfig{
		RateWindow:       cfg.Resilience.RateWindow(),
		RateMaxRequests:  cfg.Resilience.RateMaxRequests,
		BreakerThreshold: cfg.Resilience.BreakerThreshold,
		BreakerReset:     cfg.Resilience.BreakerReset(),
	})
	coordinator.StartJanitor(cfg.Resilience.SweepInterval())

	// 4. Market data + providers
	var quoteStream *market.QuoteStream
	if cfg.Providers.QuoteStreamURL != "" {
		quoteStream = market.NewQuoteStream(cfg.Providers.QuoteStreamURL)
		quoteStream.Start()
	}

	priceClient := provider.NewPriceClient(cfg.Providers.PriceBaseURL,
		time.Duration(cfg.Providers.PriceTimeoutMs)*time.Millisecond)

	// 5. Core services
	aggregator := analysis.NewAggregator(cfg.Analysis.TrustedSymbols)
	scanner := service.NewScanner(coordinator, analysis.StaticOracle{}, analysis.NullChainSource{},
		aggregator, verdictStore, scanRepo, quoteStream, service.ScannerOptions{
			BatchSize:  cfg.Resilience.BatchSize,
			BatchDelay: cfg.Resilience.BatchDelay(),
			VerdictTTL: time.Duration(cfg.Resilience.VerdictTTLMinutes) * time.Minute,
		})
	pricing := service.NewPricing(coordinator, priceClient, quoteStream,
		time.Duration(cfg.Resilience.QuoteTTLMinutes)*time.Minute)

	// 6. Handlers
	scanHandler := handler.NewScanHandler(scanner)
	quoteHandler := handler.NewQuoteHandler(pricing)

	// 7. Router
	r := gin.Default()

	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "riskgate"})
	})

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	clientLimiter := middleware.NewClientLimiter(cfg.Auth.ClientQPS, cfg.Auth.ClientBurst)

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg))
	v1.Use(middleware.RateLimitMiddleware(clientLimiter))
	{
		v1.POST("/wallets/:address/scan", scanHandler.ScanWallet)
		v1.GET("/wallets/:address/scans", scanHandler.History)
		v1.GET("/tokens/:address/risk", scanHandler.TokenRisk)
		v1.DELETE("/tokens/:address/cache", scanHandler.InvalidateToken)
		v1.GET("/quotes/:symbol", quoteHandler.GetQuote)
		v1.GET("/stats", scanHandler.Stats)
	}

	// 8. Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("riskgate started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if quoteStream != nil {
		quoteStream.Stop()
	}
	if cleanup != nil {
		cleanup.Stop()
	}
	coordinator.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	logger.Info("Server exiting")
}
