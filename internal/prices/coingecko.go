package prices

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sentiment-trading/internal/api"
	"sentiment-trading/internal/interfaces"
	"sentiment-trading/internal/types"
)

// DefaultCoinGeckoURL is the public API root
const DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// DefaultCoinIDs maps the tracked symbols to CoinGecko coin ids
var DefaultCoinIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"USDT": "tether",
	"BNB":  "binancecoin",
	"XRP":  "ripple",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
	"SOL":  "solana",
}

// CoinGecko reads USD price history from the CoinGecko market chart API
type CoinGecko struct {
	client  *api.Client
	coinIDs map[string]string
	retry   *api.RetryConfig
}

var _ interfaces.PriceSource = (*CoinGecko)(nil)

// NewCoinGecko uses DefaultCoinIDs overlaid with coinIDs
func NewCoinGecko(baseURL string, coinIDs map[string]string, timeout time.Duration) *CoinGecko {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	ids := make(map[string]string, len(DefaultCoinIDs)+len(coinIDs))
	for symbol, id := range DefaultCoinIDs {
		ids[symbol] = id
	}
	for symbol, id := range coinIDs {
		ids[strings.ToUpper(symbol)] = id
	}

	return &CoinGecko{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(baseURL, "/")),
			api.WithTimeout(timeout),
			api.WithLogging(true),
		),
		coinIDs: ids,
		retry:   api.DefaultRetryConfig(),
	}
}

type marketChart struct {
	Prices       [][2]decimal.Decimal `json:"prices"`
	TotalVolumes [][2]decimal.Decimal `json:"total_volumes"`
}

// History returns the price series between from and to. CoinGecko picks the
// granularity from the range length (hourly for 1 to 90 days).
func (c *CoinGecko) History(ctx context.Context, symbol string, from, to time.Time) ([]types.PricePoint, error) {
	id, ok := c.coinIDs[strings.ToUpper(symbol)]
	if !ok {
		return nil, fmt.Errorf("no coin id configured for %s", symbol)
	}

	query := url.Values{}
	query.Set("vs_currency", "usd")
	query.Set("from", strconv.FormatInt(from.Unix(), 10))
	query.Set("to", strconv.FormatInt(to.Unix(), 10))

	resp, err := c.client.GETWithRetry(ctx, "/coins/"+url.PathEscape(id)+"/market_chart/range", query, c.retry)
	if err != nil {
		return nil, fmt.Errorf("coingecko history for %s: %w", symbol, err)
	}

	var chart marketChart
	if err := resp.ParseJSON(&chart); err != nil {
		return nil, err
	}

	volumes := make(map[int64]decimal.Decimal, len(chart.TotalVolumes))
	for _, v := range chart.TotalVolumes {
		volumes[millisToUnix(v[0])] = v[1]
	}

	points := make([]types.PricePoint, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		ts := millisToUnix(p[0])
		point := types.PricePoint{Timestamp: ts, Price: p[1]}
		if v, ok := volumes[ts]; ok {
			point.Volume = &v
		}
		points = append(points, point)
	}
	return points, nil
}

func millisToUnix(ms decimal.Decimal) int64 {
	return ms.Div(decimal.NewFromInt(1000)).IntPart()
}
