package interfaces

import (
	"context"
	"time"

	"sentiment-trading/internal/types"
)

// ArticleSource supplies articles to the analysis pipeline
type ArticleSource interface {
	// Name identifies the source in logs and rate limiting
	Name() string

	// Fetch returns up to max articles matching query. An empty query means
	// no filtering.
	Fetch(ctx context.Context, query string, max int) ([]types.Article, error)
}

// PriceSource supplies historical prices for correlation analysis
type PriceSource interface {
	History(ctx context.Context, symbol string, from, to time.Time) ([]types.PricePoint, error)
}
