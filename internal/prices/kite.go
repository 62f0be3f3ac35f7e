package prices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"sentiment-trading/internal/interfaces"
	"sentiment-trading/internal/types"
)

const kiteInterval = "60minute"

// historyClient is the slice of the Kite Connect client used here
type historyClient interface {
	GetHistoricalData(instrumentToken int, interval string, fromDate time.Time, toDate time.Time, continuous bool, OI bool) ([]kiteconnect.HistoricalData, error)
}

// Kite reads hourly candles from Zerodha Kite Connect
type Kite struct {
	client      historyClient
	instruments map[string]int
}

var _ interfaces.PriceSource = (*Kite)(nil)

// NewKite maps symbols to Kite instrument tokens
func NewKite(apiKey, accessToken string, instruments map[string]int) *Kite {
	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	return newKiteWithClient(kc, instruments)
}

func newKiteWithClient(client historyClient, instruments map[string]int) *Kite {
	normalized := make(map[string]int, len(instruments))
	for symbol, token := range instruments {
		normalized[strings.ToUpper(symbol)] = token
	}
	return &Kite{client: client, instruments: normalized}
}

// History returns hourly closes for symbol
func (k *Kite) History(ctx context.Context, symbol string, from, to time.Time) ([]types.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	token, ok := k.instruments[strings.ToUpper(symbol)]
	if !ok {
		return nil, fmt.Errorf("no instrument token configured for %s", symbol)
	}

	candles, err := k.client.GetHistoricalData(token, kiteInterval, from, to, false, false)
	if err != nil {
		return nil, fmt.Errorf("kite historical data for %s: %w", symbol, err)
	}

	points := make([]types.PricePoint, 0, len(candles))
	for _, c := range candles {
		volume := decimal.NewFromInt(int64(c.Volume))
		points = append(points, types.PricePoint{
			Timestamp: c.Date.Unix(),
			Price:     decimal.NewFromFloat(c.Close),
			Volume:    &volume,
		})
	}
	return points, nil
}
