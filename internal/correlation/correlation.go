package correlation

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"sentiment-trading/internal/types"
)

// DefaultMaxLagHours bounds the lag search done by Correlation
const DefaultMaxLagHours = 24

const secondsPerHour = 3600

// Correlation estimates how sentiment relates to subsequent price moves. It
// searches lags 0..DefaultMaxLagHours and reports the one with the strongest
// absolute coefficient.
func Correlation(sentiments []types.TimedSentiment, prices []types.PricePoint) types.CorrelationData {
	return CorrelationWithin(sentiments, prices, DefaultMaxLagHours)
}

// CorrelationWithin is Correlation with an explicit lag search window. Empty
// input yields the zero result.
func CorrelationWithin(sentiments []types.TimedSentiment, prices []types.PricePoint, maxLagHours int) types.CorrelationData {
	if len(sentiments) == 0 || len(prices) == 0 {
		return types.CorrelationData{CorrelationCoefficient: decimal.Zero}
	}

	result := types.CorrelationData{
		CorrelationCoefficient: decimal.Zero,
		SampleSize:             min(len(sentiments), len(prices)),
	}

	// Ties keep the shortest lag
	for _, point := range SentimentLagCurve(sentiments, prices, maxLagHours) {
		if point.Coefficient.Abs().GreaterThan(result.CorrelationCoefficient.Abs()) {
			result.CorrelationCoefficient = point.Coefficient
			result.LagHours = point.LagHours
		}
	}

	return result
}

// SentimentLagCurve returns the coefficient for every lag in 0..maxLagHours
// inclusive.
func SentimentLagCurve(sentiments []types.TimedSentiment, prices []types.PricePoint, maxLagHours int) []types.LagCorrelation {
	if maxLagHours < 0 {
		return []types.LagCorrelation{}
	}

	sorted := sortedPrices(prices)
	curve := make([]types.LagCorrelation, 0, maxLagHours+1)
	for lag := 0; lag <= maxLagHours; lag++ {
		xs, ys := align(sentiments, sorted, lag)
		curve = append(curve, types.LagCorrelation{
			LagHours:    lag,
			Coefficient: pearson(xs, ys),
		})
	}
	return curve
}

func sortedPrices(prices []types.PricePoint) []types.PricePoint {
	sorted := make([]types.PricePoint, len(prices))
	copy(sorted, prices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}

// align pairs each sentiment's net score with the percent price change from
// the last price strictly before the sentiment to the first price at or after
// the sentiment plus lag. Samples missing either price are dropped.
func align(sentiments []types.TimedSentiment, sorted []types.PricePoint, lagHours int) (xs, ys []decimal.Decimal) {
	n := len(sorted)
	for _, s := range sentiments {
		before := sort.Search(n, func(i int) bool {
			return sorted[i].Timestamp >= s.Timestamp
		}) - 1
		if before < 0 {
			continue
		}

		target := s.Timestamp + int64(lagHours)*secondsPerHour
		after := sort.Search(n, func(i int) bool {
			return sorted[i].Timestamp >= target
		})
		if after == n {
			continue
		}

		xs = append(xs, s.Score.Net())
		ys = append(ys, PriceChangePercent(sorted[before].Price, sorted[after].Price))
	}
	return xs, ys
}

var (
	coefficientMax = decimal.NewFromInt(1)
	coefficientMin = decimal.NewFromInt(-1)
)

// pearson returns the sample correlation of xs and ys rounded to 4 places.
// Fewer than two pairs or a constant series give 0.
func pearson(xs, ys []decimal.Decimal) decimal.Decimal {
	if len(xs) < 2 || len(xs) != len(ys) {
		return decimal.Zero
	}

	n := decimal.NewFromInt(int64(len(xs)))
	meanX := decimal.Sum(xs[0], xs[1:]...).Div(n)
	meanY := decimal.Sum(ys[0], ys[1:]...).Div(n)

	cov, varX, varY := decimal.Zero, decimal.Zero, decimal.Zero
	for i := range xs {
		dx := xs[i].Sub(meanX)
		dy := ys[i].Sub(meanY)
		cov = cov.Add(dx.Mul(dy))
		varX = varX.Add(dx.Mul(dx))
		varY = varY.Add(dy.Mul(dy))
	}
	if varX.IsZero() || varY.IsZero() {
		return decimal.Zero
	}

	denom := math.Sqrt(varX.Mul(varY).InexactFloat64())
	if denom == 0 || math.IsInf(denom, 0) || math.IsNaN(denom) {
		return decimal.Zero
	}

	r := decimal.NewFromFloat(cov.InexactFloat64() / denom).Round(4)
	if r.GreaterThan(coefficientMax) {
		return coefficientMax
	}
	if r.LessThan(coefficientMin) {
		return coefficientMin
	}
	return r
}
