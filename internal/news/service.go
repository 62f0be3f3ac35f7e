package news

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"sentiment-trading/internal/correlation"
	"sentiment-trading/internal/interfaces"
	"sentiment-trading/internal/logger"
	"sentiment-trading/internal/nlp"
	"sentiment-trading/internal/signals"
	"sentiment-trading/internal/types"
)

// Analysis is the full result for one article
type Analysis struct {
	Article    types.Article        `json:"article"`
	Sentiment  types.SentimentScore `json:"sentiment"`
	Entities   []string             `json:"entities"`
	Signal     types.Signal         `json:"signal"`
	Type       types.SignalType     `json:"type"`
	Strength   int                  `json:"strength"`
	Direction  types.PriceDirection `json:"direction"`
	Actionable bool                 `json:"actionable"`
}

// ServiceConfig configures the analysis service
type ServiceConfig struct {
	MaxArticles          int             // Maximum articles per query across all sources
	CacheDuration        time.Duration   // How long an analysed query is served from cache
	Workers              int             // Concurrent article analyses
	DefaultSymbol        string          // Subject when no entity is found
	WordBoundaryEntities bool            // Use whole-word entity matching
	MinConfidence        decimal.Decimal // Actionability threshold
	Enabled              bool
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxArticles:   20,
		CacheDuration: 15 * time.Minute,
		Workers:       4,
		DefaultSymbol: "MARKET",
		MinConfidence: decimal.RequireFromString("0.7"),
		Enabled:       true,
	}
}

// ErrNoSources is returned when every configured source failed
var ErrNoSources = errors.New("no article source succeeded")

// Service fetches articles from its sources and analyses them
type Service struct {
	sources []interfaces.ArticleSource
	scorer  interfaces.Scorer
	limiter *RateLimiter
	cache   *analysisCache
	cfg     *ServiceConfig
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithScorer replaces the default keyword scorer
func WithScorer(scorer interfaces.Scorer) ServiceOption {
	return func(s *Service) {
		s.scorer = scorer
	}
}

// WithRateLimiter throttles requests per source
func WithRateLimiter(limiter *RateLimiter) ServiceOption {
	return func(s *Service) {
		s.limiter = limiter
	}
}

// NewService creates a service over sources. Call Close to stop the cache sweep.
func NewService(sources []interfaces.ArticleSource, cfg *ServiceConfig, opts ...ServiceOption) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.DefaultSymbol == "" {
		cfg.DefaultSymbol = "MARKET"
	}

	s := &Service{
		sources: sources,
		scorer:  nlp.NewKeywordScorer(nlp.DefaultLexicon()),
		limiter: NewRateLimiter(0, 1),
		cache:   newAnalysisCache(cfg.CacheDuration, 10*time.Minute),
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close stops background cache maintenance
func (s *Service) Close() {
	s.cache.close()
}

// Analyze returns analyses for query, served from cache while fresh
func (s *Service) Analyze(ctx context.Context, query string) ([]Analysis, error) {
	if !s.cfg.Enabled {
		return []Analysis{}, nil
	}

	if cached, at, ok := s.cache.get(query); ok {
		logger.Info(ctx, "Using cached analysis", "query", query, "age_minutes", time.Since(at).Minutes())
		return cloneAnalyses(cached), nil
	}

	logger.Info(ctx, "Fetching fresh articles", "query", query)
	return s.Refresh(ctx, query)
}

// Refresh bypasses the cache and replaces its entry for query
func (s *Service) Refresh(ctx context.Context, query string) ([]Analysis, error) {
	articles, err := s.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	analyses, err := s.AnalyzeArticles(ctx, articles)
	if err != nil {
		return nil, err
	}

	for _, a := range analyses {
		logger.Signal(ctx, a.Signal.Symbol, a.Type.String(), a.Signal.Confidence,
			"source", a.Article.Source,
			"title", a.Article.Title,
			"strength", a.Strength,
			"actionable", a.Actionable,
		)
	}

	s.cache.set(query, cloneAnalyses(analyses))
	return analyses, nil
}

// Fetch pulls up to MaxArticles from the sources in order. Failing sources
// are logged and skipped; an error is returned only when all of them fail.
func (s *Service) Fetch(ctx context.Context, query string) ([]types.Article, error) {
	all := []types.Article{}
	if len(s.sources) == 0 {
		return all, nil
	}

	var errs []error
	for _, src := range s.sources {
		// remaining 0 means unlimited
		remaining := 0
		if s.cfg.MaxArticles > 0 {
			remaining = s.cfg.MaxArticles - len(all)
			if remaining <= 0 {
				break
			}
		}

		if err := s.limiter.Wait(ctx, src.Name()); err != nil {
			return nil, fmt.Errorf("rate limiter for %s: %w", src.Name(), err)
		}

		articles, err := src.Fetch(ctx, query, remaining)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to fetch articles", err, "source", src.Name(), "query", query)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}

		logger.Fetch(ctx, src.Name(), query, len(articles))
		if remaining > 0 && len(articles) > remaining {
			articles = articles[:remaining]
		}
		all = append(all, articles...)
	}

	if len(errs) == len(s.sources) {
		return nil, fmt.Errorf("%w: %w", ErrNoSources, errors.Join(errs...))
	}
	return all, nil
}

// AnalyzeArticles analyses articles concurrently, keeping input order
func (s *Service) AnalyzeArticles(ctx context.Context, articles []types.Article) ([]Analysis, error) {
	results := make([]Analysis, len(articles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for i, article := range articles {
		i, article := i, article
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.AnalyzeArticle(article)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// AnalyzeArticle runs the scorer, entity extractor and signal generator on one article
func (s *Service) AnalyzeArticle(article types.Article) Analysis {
	sentiment := s.scorer.Analyze(article)

	text := article.Title + " " + article.Content
	var entities []string
	if s.cfg.WordBoundaryEntities {
		entities = nlp.ExtractEntitiesBounded(text)
	} else {
		entities = nlp.ExtractEntities(text)
	}

	symbol := s.cfg.DefaultSymbol
	if len(entities) > 0 {
		symbol = entities[0]
	}

	signal, signalType := signals.GenerateWithType(sentiment, symbol)

	return Analysis{
		Article:    article,
		Sentiment:  sentiment,
		Entities:   entities,
		Signal:     signal,
		Type:       signalType,
		Strength:   signals.Strength(sentiment),
		Direction:  correlation.PredictDirection(sentiment),
		Actionable: signals.IsActionable(signal, s.cfg.MinConfidence),
	}
}

// ClearCache drops every cached analysis
func (s *Service) ClearCache() {
	s.cache.clear()
}

// CachedQueries lists the queries currently held in cache
func (s *Service) CachedQueries() []string {
	return s.cache.keys()
}
