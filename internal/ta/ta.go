package ta

import (
	"math"

	"github.com/shopspring/decimal"

	"sentiment-trading/internal/types"
)

// SMA is the mean of the last n values, NaN when there are fewer
func SMA(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		sum += vals[i]
	}
	return sum / float64(n)
}

// StdDev is the population standard deviation of the last n values
func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}

// Closes extracts prices in input order
func Closes(prices []types.PricePoint) []float64 {
	out := make([]float64, 0, len(prices))
	for _, p := range prices {
		out = append(out, p.Price.InexactFloat64())
	}
	return out
}

// Returns are the simple period-over-period returns. A zero previous price
// yields a zero return.
func Returns(prices []types.PricePoint) []float64 {
	if len(prices) < 2 {
		return nil
	}
	closes := Closes(prices)
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (closes[i]-closes[i-1])/closes[i-1])
	}
	return out
}

// HistoricalVolatility is the standard deviation of simple returns, rounded
// to 6 places. Fewer than two returns give 0.
func HistoricalVolatility(prices []types.PricePoint) decimal.Decimal {
	returns := Returns(prices)
	if len(returns) < 2 {
		return decimal.Zero
	}
	sd := StdDev(returns, len(returns))
	if math.IsNaN(sd) || math.IsInf(sd, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(sd).Round(6)
}
