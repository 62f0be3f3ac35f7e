package prices

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sentiment-trading/internal/interfaces"
	"sentiment-trading/internal/types"
)

var basePrices = map[string]float64{
	"BTC":  50000,
	"ETH":  3000,
	"USDT": 1,
	"BNB":  300,
	"XRP":  0.5,
	"ADA":  0.4,
	"DOGE": 0.08,
	"SOL":  100,
}

// Synthetic generates a deterministic hourly random walk per symbol
type Synthetic struct {
	volatility float64
}

var _ interfaces.PriceSource = (*Synthetic)(nil)

// NewSynthetic walks with the given hourly return standard deviation
func NewSynthetic(volatility float64) *Synthetic {
	if volatility <= 0 {
		volatility = 0.01
	}
	return &Synthetic{volatility: volatility}
}

// History returns one point per hour from the first whole hour at or after
// from up to and including to. The same symbol and range always produce the
// same series.
func (s *Synthetic) History(ctx context.Context, symbol string, from, to time.Time) ([]types.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("invalid range: %s is before %s", to, from)
	}

	symbol = strings.ToUpper(symbol)
	start := from.UTC().Truncate(time.Hour)
	if start.Before(from) {
		start = start.Add(time.Hour)
	}

	rng := rand.New(rand.NewSource(seed(symbol, start)))
	price := basePrice(symbol)

	points := []types.PricePoint{}
	for t := start; !t.After(to); t = t.Add(time.Hour) {
		volume := decimal.NewFromFloat(1000 + rng.Float64()*9000).Round(2)
		points = append(points, types.PricePoint{
			Timestamp: t.Unix(),
			Price:     decimal.NewFromFloat(price).Round(4),
			Volume:    &volume,
		})
		price *= 1 + rng.NormFloat64()*s.volatility
		if price <= 0 {
			price = basePrice(symbol) * 0.01
		}
	}
	return points, nil
}

func basePrice(symbol string) float64 {
	if p, ok := basePrices[symbol]; ok {
		return p
	}
	return 100
}

func seed(symbol string, start time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return int64(h.Sum64()) ^ start.Unix()
}
