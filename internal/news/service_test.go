package news

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"sentiment-trading/internal/interfaces"
	"sentiment-trading/internal/signals"
	"sentiment-trading/internal/types"
)

// countingSource records how often it is fetched from
type countingSource struct {
	name     string
	articles []types.Article
	err      error
	calls    atomic.Int32
}

func (c *countingSource) Name() string { return c.name }

func (c *countingSource) Fetch(ctx context.Context, query string, maxArticles int) ([]types.Article, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.articles, nil
}

func testConfig() *ServiceConfig {
	cfg := DefaultServiceConfig()
	cfg.CacheDuration = time.Minute
	return cfg
}

func newTestService(t *testing.T, cfg *ServiceConfig, sources ...interfaces.ArticleSource) *Service {
	t.Helper()
	svc := NewService(sources, cfg)
	t.Cleanup(svc.Close)
	return svc
}

func TestAnalysisCache(t *testing.T) {
	cache := newAnalysisCache(50*time.Millisecond, 0)
	defer cache.close()

	analyses := []Analysis{{Signal: types.Signal{Symbol: "BTC"}}}
	cache.set("bitcoin", analyses)

	got, _, found := cache.get("bitcoin")
	if !found {
		t.Fatal("Expected to find cached analysis")
	}
	if got[0].Signal.Symbol != "BTC" {
		t.Errorf("Expected symbol BTC, got %s", got[0].Signal.Symbol)
	}

	time.Sleep(100 * time.Millisecond)
	if _, _, found = cache.get("bitcoin"); found {
		t.Error("Expected cache entry to be expired")
	}
}

func TestCacheCleanup(t *testing.T) {
	cache := newAnalysisCache(10*time.Millisecond, 0)
	defer cache.close()

	for _, q := range []string{"a", "b", "c"} {
		cache.set(q, nil)
	}
	time.Sleep(30 * time.Millisecond)
	cache.cleanup()

	if keys := cache.keys(); len(keys) != 0 {
		t.Errorf("Expected 0 cache entries after cleanup, got %v", keys)
	}
}

func TestServiceConfig(t *testing.T) {
	cfg := DefaultServiceConfig()

	if cfg.MaxArticles != 20 {
		t.Errorf("Expected MaxArticles to be 20, got %d", cfg.MaxArticles)
	}
	if cfg.DefaultSymbol != "MARKET" {
		t.Errorf("Expected default symbol MARKET, got %s", cfg.DefaultSymbol)
	}
	if cfg.MinConfidence.String() != "0.7" {
		t.Errorf("Expected min confidence 0.7, got %s", cfg.MinConfidence)
	}
	if !cfg.Enabled {
		t.Error("Expected Enabled to be true")
	}
}

func TestServiceDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	src := &countingSource{name: "c", articles: SampleArticles()}
	svc := newTestService(t, cfg, src)

	analyses, err := svc.Analyze(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(analyses) != 0 {
		t.Errorf("Expected no analyses when disabled, got %d", len(analyses))
	}
	if src.calls.Load() != 0 {
		t.Error("Expected no fetch when disabled")
	}
}

func TestAnalyzeSampleArticles(t *testing.T) {
	svc := newTestService(t, testConfig(), NewMockSource())

	analyses, err := svc.Analyze(context.Background(), "")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(analyses) != 4 {
		t.Fatalf("Expected 4 analyses, got %d", len(analyses))
	}

	wantSymbols := []string{"BTC", "ETH", "MARKET", "MARKET"}
	for i, a := range analyses {
		if a.Article.Title != sampleArticles[i].Title {
			t.Errorf("Expected input order at %d, got %q", i, a.Article.Title)
		}
		if a.Signal.Symbol != wantSymbols[i] {
			t.Errorf("Expected symbol %s at %d, got %s", wantSymbols[i], i, a.Signal.Symbol)
		}
		if a.Type != signals.Classify(a.Sentiment) {
			t.Errorf("Type %s disagrees with classification of %+v", a.Type, a.Sentiment)
		}
		if a.Strength != signals.Strength(a.Sentiment) {
			t.Errorf("Strength %d disagrees with sentiment", a.Strength)
		}
	}
}

func TestAnalyzeUsesCache(t *testing.T) {
	src := &countingSource{name: "c", articles: SampleArticles()}
	svc := newTestService(t, testConfig(), src)
	ctx := context.Background()

	if _, err := svc.Analyze(ctx, "bitcoin"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Analyze(ctx, "bitcoin"); err != nil {
		t.Fatal(err)
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("Expected 1 fetch with a warm cache, got %d", got)
	}

	if _, err := svc.Refresh(ctx, "bitcoin"); err != nil {
		t.Fatal(err)
	}
	if got := src.calls.Load(); got != 2 {
		t.Errorf("Expected Refresh to bypass the cache, got %d fetches", got)
	}

	if got := svc.CachedQueries(); !reflect.DeepEqual(got, []string{"bitcoin"}) {
		t.Errorf("Expected cached queries [bitcoin], got %v", got)
	}
	svc.ClearCache()
	if got := svc.CachedQueries(); len(got) != 0 {
		t.Errorf("Expected empty cache, got %v", got)
	}
}

func TestCachedAnalysesAreCopies(t *testing.T) {
	svc := newTestService(t, testConfig(), NewMockSource())
	ctx := context.Background()

	first, err := svc.Analyze(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(first) == 0 || len(first[0].Entities) == 0 {
		t.Fatalf("Expected analyses with entities, got %+v", first)
	}
	want := first[0].Signal.Symbol
	wantEntity := first[0].Entities[0]

	first[0].Signal.Symbol = "MUTATED"
	first[0].Entities[0] = "MUTATED"

	second, err := svc.Analyze(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if second[0].Signal.Symbol != want {
		t.Errorf("Expected cached symbol %s, got %s", want, second[0].Signal.Symbol)
	}
	if second[0].Entities[0] != wantEntity {
		t.Errorf("Expected cached entity %s, got %s", wantEntity, second[0].Entities[0])
	}

	second[0].Entities[0] = "MUTATED"
	third, _ := svc.Analyze(ctx, "")
	if third[0].Entities[0] != wantEntity {
		t.Errorf("Expected cache hits to be independent, got %s", third[0].Entities[0])
	}
}

func TestFetchSkipsFailingSource(t *testing.T) {
	bad := &countingSource{name: "bad", err: errors.New("unreachable")}
	good := &countingSource{name: "good", articles: SampleArticles()[:2]}
	svc := newTestService(t, testConfig(), bad, good)

	articles, err := svc.Fetch(context.Background(), "")
	if err != nil {
		t.Fatalf("Expected partial success, got %v", err)
	}
	if len(articles) != 2 {
		t.Errorf("Expected 2 articles, got %d", len(articles))
	}
}

func TestFetchAllSourcesFail(t *testing.T) {
	bad := &countingSource{name: "bad", err: errors.New("unreachable")}
	worse := &countingSource{name: "worse", err: errors.New("timeout")}
	svc := newTestService(t, testConfig(), bad, worse)

	_, err := svc.Fetch(context.Background(), "")
	if !errors.Is(err, ErrNoSources) {
		t.Errorf("Expected ErrNoSources, got %v", err)
	}
}

func TestFetchCapsMaxArticles(t *testing.T) {
	cfg := testConfig()
	cfg.MaxArticles = 3
	first := &countingSource{name: "first", articles: SampleArticles()}
	second := &countingSource{name: "second", articles: SampleArticles()}
	svc := newTestService(t, cfg, first, second)

	articles, err := svc.Fetch(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 3 {
		t.Errorf("Expected 3 articles, got %d", len(articles))
	}
	if second.calls.Load() != 0 {
		t.Error("Expected the second source to be skipped once the cap is reached")
	}
}

func TestAnalyzeArticleBuy(t *testing.T) {
	svc := newTestService(t, testConfig())

	a := svc.AnalyzeArticle(types.Article{
		Title:   "Bitcoin surges to record high",
		Content: "Great gains as bullish trend continues for BTC",
		Source:  "Test",
	})

	if a.Type != types.Buy {
		t.Errorf("Expected BUY, got %s", a.Type)
	}
	if a.Signal.Symbol != "BTC" {
		t.Errorf("Expected BTC, got %s", a.Signal.Symbol)
	}
	if !a.Actionable {
		t.Errorf("Expected actionable signal, confidence %s", a.Signal.Confidence)
	}
	if a.Direction != types.Up {
		t.Errorf("Expected UP direction, got %s", a.Direction)
	}
}

func TestWordBoundaryEntities(t *testing.T) {
	article := types.Article{Title: "The ethos of open finance", Content: "steady"}

	loose := newTestService(t, testConfig())
	if got := loose.AnalyzeArticle(article).Signal.Symbol; got != "ETH" {
		t.Errorf("Expected substring match ETH, got %s", got)
	}

	cfg := testConfig()
	cfg.WordBoundaryEntities = true
	strict := newTestService(t, cfg)
	if got := strict.AnalyzeArticle(article).Signal.Symbol; got != "MARKET" {
		t.Errorf("Expected MARKET with word boundaries, got %s", got)
	}
}

func TestAnalyzeArticlesKeepsOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 3

	var articles []types.Article
	for i := 0; i < 25; i++ {
		articles = append(articles, SampleArticles()[i%4])
	}

	svc := newTestService(t, cfg)
	analyses, err := svc.AnalyzeArticles(context.Background(), articles)
	if err != nil {
		t.Fatal(err)
	}
	for i, a := range analyses {
		if a.Article.Title != articles[i].Title {
			t.Fatalf("Order broken at %d: %q", i, a.Article.Title)
		}
	}
}

func TestAnalyzeArticlesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestService(t, testConfig())
	if _, err := svc.AnalyzeArticles(ctx, SampleArticles()); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
