package news

import (
	"context"
	"strings"
	"time"

	"sentiment-trading/internal/interfaces"
	"sentiment-trading/internal/types"
)

var sampleArticles = []types.Article{
	{
		Title:     "Bitcoin Surges to New All-Time High",
		Content:   "Bitcoin has reached unprecedented levels as institutional adoption continues to grow. Major companies announce BTC purchases.",
		Source:    "CryptoNews",
		Timestamp: 1696435200,
	},
	{
		Title:     "Ethereum Upgrade Boosts Network Performance",
		Content:   "The latest Ethereum upgrade shows promising results with improved transaction speeds and reduced gas fees.",
		Source:    "BlockchainDaily",
		Timestamp: 1696435300,
	},
	{
		Title:     "Market Correction Expected Amid Regulatory Concerns",
		Content:   "Analysts warn of potential market downturn as regulatory pressure increases. Investors show caution in recent trading.",
		Source:    "FinanceTimes",
		Timestamp: 1696435400,
	},
	{
		Title:     "DeFi Protocols Report Strong Growth",
		Content:   "Decentralized finance platforms continue to see increased adoption with total value locked reaching new highs.",
		Source:    "DeFiWatch",
		Timestamp: 1696435500,
	},
}

// MockSource serves a fixed set of sample articles
type MockSource struct {
	articles []types.Article
}

var _ interfaces.ArticleSource = (*MockSource)(nil)

func NewMockSource() *MockSource {
	return &MockSource{articles: SampleArticles()}
}

// NewMockSourceWith serves the given articles instead of the samples
func NewMockSourceWith(articles []types.Article) *MockSource {
	return &MockSource{articles: append([]types.Article(nil), articles...)}
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Fetch(ctx context.Context, query string, maxArticles int) ([]types.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]types.Article, 0, len(m.articles))
	for _, a := range m.articles {
		if maxArticles > 0 && len(out) >= maxArticles {
			break
		}
		if matchesQuery(a, query) {
			out = append(out, a)
		}
	}
	return out, nil
}

// SampleArticles returns a copy of the built-in sample articles
func SampleArticles() []types.Article {
	return append([]types.Article(nil), sampleArticles...)
}

// RecentSampleArticles returns the samples restamped spacing apart, the last
// one spacing before the start of now's hour
func RecentSampleArticles(now time.Time, spacing time.Duration) []types.Article {
	articles := SampleArticles()
	end := now.UTC().Truncate(time.Hour)
	for i := range articles {
		articles[i].Timestamp = end.Add(-time.Duration(len(articles)-i) * spacing).Unix()
	}
	return articles
}

// PositiveArticles are the samples mentioning a surge, boost or growth
func PositiveArticles() []types.Article {
	return filterSamples("surge", "boost", "growth")
}

// NegativeArticles are the samples mentioning a correction, concern or downturn
func NegativeArticles() []types.Article {
	return filterSamples("correction", "concern", "downturn")
}

func filterSamples(terms ...string) []types.Article {
	var out []types.Article
	for _, a := range sampleArticles {
		text := strings.ToLower(a.Title + " " + a.Content)
		for _, term := range terms {
			if strings.Contains(text, term) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// NewSampleArticle builds an article attributed to source and stamped now
func NewSampleArticle(source, title, content string) types.Article {
	return types.Article{
		Title:     title,
		Content:   content,
		Source:    source,
		Timestamp: time.Now().Unix(),
	}
}
