package interfaces

import "sentiment-trading/internal/types"

// Scorer maps an article to a sentiment distribution. Implementations must be
// total: any text, including empty strings, yields a score.
type Scorer interface {
	Analyze(article types.Article) types.SentimentScore
}
