package correlation

import (
	"github.com/shopspring/decimal"

	"sentiment-trading/internal/types"
)

var (
	directionThreshold = decimal.RequireFromString("0.7")
	hundred            = decimal.NewFromInt(100)
)

// PriceChangePercent returns ((new - old) / old) * 100, or 0 when old is 0
func PriceChangePercent(oldPrice, newPrice decimal.Decimal) decimal.Decimal {
	if oldPrice.IsZero() {
		return decimal.Zero
	}
	return newPrice.Sub(oldPrice).Div(oldPrice).Mul(hundred)
}

// PredictDirection calls UP above 0.7 positive, DOWN above 0.7 negative.
// These thresholds are independent of the signal generator's.
func PredictDirection(sentiment types.SentimentScore) types.PriceDirection {
	switch {
	case sentiment.Positive.GreaterThan(directionThreshold):
		return types.Up
	case sentiment.Negative.GreaterThan(directionThreshold):
		return types.Down
	default:
		return types.Neutral
	}
}

// PriceTarget scales the current price by net sentiment times volatility
func PriceTarget(currentPrice decimal.Decimal, sentiment types.SentimentScore, volatility decimal.Decimal) decimal.Decimal {
	expectedChange := sentiment.Net().Mul(volatility)
	return currentPrice.Mul(decimal.NewFromInt(1).Add(expectedChange))
}
