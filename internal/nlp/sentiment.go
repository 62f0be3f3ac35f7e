package nlp

import (
	"strings"

	"github.com/shopspring/decimal"

	"sentiment-trading/internal/interfaces"
	"sentiment-trading/internal/types"
)

var (
	// Scores reported when no keyword is found at all
	noHitPositive = decimal.RequireFromString("0.1")
	noHitNegative = decimal.RequireFromString("0.1")
	noHitNeutral  = decimal.RequireFromString("0.8")

	// score = ratio*scoreScale + scoreFloor keeps each pole within [0.05, 0.90]
	scoreScale = decimal.RequireFromString("0.85")
	scoreFloor = decimal.RequireFromString("0.05")
)

// KeywordScorer scores articles by counting lexicon hits
type KeywordScorer struct {
	lexicon Lexicon
}

var _ interfaces.Scorer = (*KeywordScorer)(nil)

// NewKeywordScorer creates a scorer over the given lexicon
func NewKeywordScorer(lexicon Lexicon) *KeywordScorer {
	return &KeywordScorer{lexicon: lexicon}
}

var defaultScorer = NewKeywordScorer(DefaultLexicon())

// Analyze scores an article with the default lexicon
func Analyze(article types.Article) types.SentimentScore {
	return defaultScorer.Analyze(article)
}

// CountKeywords returns positive and negative hit counts for text using the
// default lexicon
func CountKeywords(text string) (positive, negative int) {
	return defaultScorer.count(strings.ToLower(text))
}

// Analyze returns the sentiment distribution of the article's title and
// content. It never fails; text without any keyword gets a low-confidence
// neutral distribution.
func (s *KeywordScorer) Analyze(article types.Article) types.SentimentScore {
	text := strings.ToLower(article.Title + " " + article.Content)

	positive, negative := s.count(text)
	total := positive + negative
	if total == 0 {
		return types.NewSentimentScore(noHitPositive, noHitNegative, noHitNeutral)
	}

	t := decimal.NewFromInt(int64(total))
	posRatio := decimal.NewFromInt(int64(positive)).Div(t)
	negRatio := decimal.NewFromInt(int64(negative)).Div(t)

	return distribution(posRatio, negRatio)
}

func (s *KeywordScorer) count(text string) (positive, negative int) {
	for _, kw := range s.lexicon.Positive {
		positive += strings.Count(text, kw)
	}
	for _, kw := range s.lexicon.Negative {
		negative += strings.Count(text, kw)
	}
	return positive, negative
}

// distribution maps hit ratios into score space. Neutral takes the remainder
// and is floored at zero, so ratios that together exceed one break the
// sum-to-one property instead of producing a negative component.
func distribution(posRatio, negRatio decimal.Decimal) types.SentimentScore {
	pos := posRatio.Mul(scoreScale).Add(scoreFloor)
	neg := negRatio.Mul(scoreScale).Add(scoreFloor)

	neutral := decimal.NewFromInt(1).Sub(pos).Sub(neg)
	if neutral.IsNegative() {
		neutral = decimal.Zero
	}

	return types.NewSentimentScore(pos, neg, neutral)
}
