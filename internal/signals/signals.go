package signals

import (
	"github.com/shopspring/decimal"

	"sentiment-trading/internal/types"
)

var (
	// A pole must exceed this to trigger BUY or SELL
	actionThreshold = decimal.RequireFromString("0.65")
	// ...and lead the opposite pole by more than this margin
	actionMargin = decimal.RequireFromString("0.3")
	// HOLD confidence is never reported below this
	holdConfidenceFloor = decimal.RequireFromString("0.5")

	hundred = decimal.NewFromInt(100)
)

// Classify maps a sentiment distribution to BUY, SELL or HOLD.
//
//   - BUY:  positive > 0.65 and positive > negative + 0.3
//   - SELL: negative > 0.65 and negative > positive + 0.3
//   - HOLD: otherwise
func Classify(sentiment types.SentimentScore) types.SignalType {
	switch {
	case dominates(sentiment.Positive, sentiment.Negative):
		return types.Buy
	case dominates(sentiment.Negative, sentiment.Positive):
		return types.Sell
	default:
		return types.Hold
	}
}

func dominates(pole, opposite decimal.Decimal) bool {
	return pole.GreaterThan(actionThreshold) && pole.GreaterThan(opposite.Add(actionMargin))
}

// GenerateWithType builds the signal for symbol together with its
// classification. Confidence is the winning pole for BUY/SELL and
// max(neutral, 0.5) for HOLD.
func GenerateWithType(sentiment types.SentimentScore, symbol string) (types.Signal, types.SignalType) {
	signalType := Classify(sentiment)

	var confidence decimal.Decimal
	switch signalType {
	case types.Buy:
		confidence = sentiment.Positive
	case types.Sell:
		confidence = sentiment.Negative
	case types.Hold:
		confidence = decimal.Max(sentiment.Neutral, holdConfidenceFloor)
	}

	return types.Signal{
		Symbol:     symbol,
		Sentiment:  sentiment,
		Confidence: confidence,
	}, signalType
}

// Generate is GenerateWithType for callers that don't need the label
func Generate(sentiment types.SentimentScore, symbol string) types.Signal {
	signal, _ := GenerateWithType(sentiment, symbol)
	return signal
}

// Strength is the dominant sentiment component on a 0-100 scale
func Strength(sentiment types.SentimentScore) int {
	top := decimal.Max(sentiment.Positive, sentiment.Negative, sentiment.Neutral)
	strength := top.Mul(hundred).Truncate(0).IntPart()

	if strength > 100 {
		return 100
	}
	if strength < 0 {
		return 0
	}
	return int(strength)
}

// IsActionable reports whether the signal's confidence reaches minConfidence
func IsActionable(signal types.Signal, minConfidence decimal.Decimal) bool {
	return signal.Confidence.GreaterThanOrEqual(minConfidence)
}
