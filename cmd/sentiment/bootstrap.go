package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"

	"sentiment-trading/internal/eod"
	"sentiment-trading/internal/eod/eodobs"
	"sentiment-trading/internal/interfaces"
	"sentiment-trading/internal/logger"
	"sentiment-trading/internal/news"
	"sentiment-trading/internal/news/newsobs"
	"sentiment-trading/internal/prices"
	"sentiment-trading/internal/prices/pricesobs"
	"sentiment-trading/internal/signallog"
	"sentiment-trading/internal/store"
)

const (
	defaultConfigPath  = "config.yaml"
	demoArticleSpacing = 6 * time.Hour
)

// initializeSystem loads .env, sets up logging and tracing, and wraps the
// EOD summarizer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	initializeEOD()
	return nil
}

// loadConfig reads path. A missing default config falls back to the demo
// configuration; a missing explicit path is an error.
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) && path == defaultConfigPath {
		logger.Warn(ctx, "No config.yaml found - using demo configuration (mock articles, synthetic prices)")
		return store.DefaultConfig(), nil
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs gzips signal logs past the configured retention
func compressOldLogs(ctx context.Context, cfg *store.Config) {
	if err := signallog.CompressOlder(cfg.SignalLog.RetentionDays); err != nil {
		logger.Warn(ctx, "Failed to compress old signal logs", "error", err)
	}
}

// initializeSources builds the configured article sources with observability
func initializeSources(ctx context.Context, cfg *store.Config) []interfaces.ArticleSource {
	var sources []interfaces.ArticleSource

	if cfg.Sources.Mock {
		sources = append(sources, mockSource(cfg))
	}
	if len(cfg.Sources.RSS) > 0 {
		sources = append(sources, news.NewRSSSource(cfg.Sources.RSS, cfg.SourceTimeout()))
	}
	if cfg.Sources.Scrape {
		sources = append(sources, news.NewScraper(news.DefaultSites(), cfg.SourceTimeout(), cfg.Sources.EnrichContent))
	}

	wrapped := make([]interfaces.ArticleSource, len(sources))
	names := make([]string, len(sources))
	for i, src := range sources {
		wrapped[i] = newsobs.Wrap(src)
		names[i] = src.Name()
	}

	logger.Info(ctx, "Article sources configured", "sources", names)
	return wrapped
}

// mockSource stamps the samples inside the price lookback in demo mode so
// correlate has sentiment to pair with the synthetic prices
func mockSource(cfg *store.Config) *news.MockSource {
	if cfg.Mode != store.ModeDemo {
		return news.NewMockSource()
	}
	spacing := cfg.Lookback() / time.Duration(len(news.SampleArticles())+1)
	if spacing > demoArticleSpacing {
		spacing = demoArticleSpacing
	}
	return news.NewMockSourceWith(news.RecentSampleArticles(time.Now(), spacing))
}

// initializeService builds the analysis service over the configured sources
func initializeService(ctx context.Context, cfg *store.Config) *news.Service {
	serviceConfig := &news.ServiceConfig{
		MaxArticles:          cfg.Analysis.MaxArticles,
		CacheDuration:        cfg.CacheTTL(),
		Workers:              cfg.Analysis.Workers,
		DefaultSymbol:        cfg.Analysis.DefaultSymbol,
		WordBoundaryEntities: cfg.Analysis.WordBoundaryEntities,
		MinConfidence:        cfg.MinConfidence(),
		Enabled:              true,
	}

	limiter := news.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	return news.NewService(initializeSources(ctx, cfg), serviceConfig, news.WithRateLimiter(limiter))
}

// initializePriceSource builds the configured price history source, cached
// and with observability
func initializePriceSource(ctx context.Context, cfg *store.Config) (interfaces.PriceSource, error) {
	var src interfaces.PriceSource

	switch cfg.Prices.Source {
	case store.PriceSourceKite:
		apiKey, accessToken := os.Getenv("KITE_API_KEY"), os.Getenv("KITE_ACCESS_TOKEN")
		if apiKey == "" || accessToken == "" {
			return nil, errors.New("KITE_API_KEY and KITE_ACCESS_TOKEN must be set for the kite price source")
		}
		src = prices.NewKite(apiKey, accessToken, cfg.Prices.Instruments)
		logger.Info(ctx, "Using LIVE candle data from Zerodha")
	case store.PriceSourceCoinGecko:
		src = prices.NewCoinGecko(cfg.Prices.BaseURL, cfg.Prices.CoinIDs, cfg.SourceTimeout())
		logger.Info(ctx, "Using CoinGecko market chart data")
	default:
		src = prices.NewSynthetic(0)
		logger.Info(ctx, "Using SYNTHETIC price data for testing")
	}

	return pricesobs.Wrap(cfg.Prices.Source, prices.NewCached(src, 0)), nil
}

// initializeEOD wraps the default EOD summarizer with observability
func initializeEOD() {
	eod.SetDefaultSummarizer(eodobs.Wrap(eod.NewSummarizer()))
}
