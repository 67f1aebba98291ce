package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sukhantharot/dividend-stocks/config"
	"github.com/sukhantharot/dividend-stocks/internal"
	"github.com/sukhantharot/dividend-stocks/internal/browser"
	"github.com/sukhantharot/dividend-stocks/internal/dividend"
	"github.com/sukhantharot/dividend-stocks/internal/gateway"
	"github.com/sukhantharot/dividend-stocks/internal/scraper"
	"github.com/sukhantharot/dividend-stocks/internal/store"
	"github.com/sukhantharot/dividend-stocks/logger"
	"github.com/sukhantharot/dividend-stocks/services/cache"
	"github.com/sukhantharot/dividend-stocks/services/publisher"
	"github.com/sukhantharot/dividend-stocks/services/worker"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("crawl_interval", cfg.CrawlInterval).
		Int("months_ahead", cfg.MonthsAhead).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	deps, err := initializeDependencies(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer deps.Cleanup(ctx)

	normalizer := dividend.NewNormalizer(dividend.EraConfig{
		ShortYearOffset: cfg.ShortYearOffset,
		CutoverYear:     cfg.EraCutoverYear,
		EraOffset:       cfg.EraOffset,
		StaleYears:      cfg.StaleYears,
	})

	crawler := scraper.NewCrawler(deps.Fetcher, scraper.Options{
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		PageTimeout:  cfg.PageTimeout,
		WaitTimeout:  cfg.WaitTimeout,
		PageDelay:    cfg.PageDelay,
	})

	gw := gateway.New(
		deps.Cache,
		deps.Store,
		scraper.NewService(crawler, cfg.SettradeURL, cfg.PageSizeHint),
		normalizer,
		gateway.Options{
			CacheTTL:        cfg.CacheExpiry,
			FreshnessWindow: cfg.FreshnessWindow,
		},
	)

	// Create and start the calendar refresh worker
	w := worker.NewWorker(
		ctx,
		crawler,
		store.NewReconciler(deps.Store),
		deps.Publisher,
		normalizer,
		cfg.SETCalendarURL,
		cfg.MonthsAhead,
		cfg.CrawlInterval,
	)

	go func() {
		log.Info().Msg("Starting calendar refresh worker")
		w.Start()
	}()

	if len(cfg.WatchSymbols) > 0 {
		go watchSymbols(ctx, gw, cfg.WatchSymbols, cfg.CrawlInterval)
	}

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().
		Str("signal", sig.String()).
		Msg("Received shutdown signal")
	cancel()

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}

// watchSymbols keeps the watched symbols warm through the gateway
func watchSymbols(ctx context.Context, gw *gateway.Gateway, symbols []string, interval time.Duration) {
	log := logger.ForGateway()
	for {
		for _, symbol := range symbols {
			response, err := gw.GetOrScrape(ctx, symbol, false)
			if err != nil {
				logger.LogError("watch", err, "refresh failed for %s", symbol)
				continue
			}
			log.Debug().
				Str("symbol", response.Symbol).
				Int("events", len(response.Dividends)).
				Msg("Watched symbol refreshed")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// initializeDependencies initializes all required services
func initializeDependencies(ctx context.Context, cfg *config.Config) (*internal.Dependencies, error) {
	deps := &internal.Dependencies{}

	// Fast cache backend
	switch cfg.CacheBackend {
	case "memcache":
		deps.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	default:
		deps.Cache = cache.NewRedisService(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisUsername, cfg.RedisPassword)
		logger.Info("Connected to Redis at %s (DB: %d)", cfg.RedisAddr, cfg.RedisDB)
	}

	// Dividend store
	mongoStore, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	if err != nil {
		return nil, err
	}
	deps.Store = mongoStore
	logger.Info("Connected to MongoDB at %s (%s.%s)", cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)

	// Event stream publisher
	deps.Publisher = publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLen)
	logger.Info("Publishing new events to stream %s", cfg.RedisStream)

	// Headless browser shared by every crawl
	deps.Fetcher = browser.NewChromeFetcher(browser.ChromeConfig{Headless: cfg.Headless})

	return deps, nil
}
