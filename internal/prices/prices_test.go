package prices

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	"github.com/zerodha/gokiteconnect/v4/models"

	"sentiment-trading/internal/api"
	"sentiment-trading/internal/types"
)

var (
	rangeFrom = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	rangeTo   = rangeFrom.Add(24 * time.Hour)
)

func TestSyntheticHistory(t *testing.T) {
	src := NewSynthetic(0.01)
	ctx := context.Background()

	points, err := src.History(ctx, "btc", rangeFrom, rangeTo)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 25 {
		t.Fatalf("Expected 25 hourly points, got %d", len(points))
	}
	if points[0].Timestamp != rangeFrom.Unix() {
		t.Errorf("Expected first point at range start, got %d", points[0].Timestamp)
	}
	if points[0].Price.String() != "50000" {
		t.Errorf("Expected BTC to start at 50000, got %s", points[0].Price)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Timestamp-points[i-1].Timestamp != 3600 {
			t.Fatalf("Expected hourly spacing at %d", i)
		}
		if !points[i].Price.IsPositive() {
			t.Fatalf("Expected positive price at %d, got %s", i, points[i].Price)
		}
		if points[i].Volume == nil {
			t.Fatalf("Expected volume at %d", i)
		}
	}

	again, _ := src.History(ctx, "BTC", rangeFrom, rangeTo)
	for i := range points {
		if !points[i].Price.Equal(again[i].Price) {
			t.Fatalf("Expected deterministic series, differs at %d", i)
		}
	}

	other, _ := src.History(ctx, "ETH", rangeFrom, rangeTo)
	if other[1].Price.Equal(points[1].Price) {
		t.Error("Expected different symbols to walk differently")
	}
}

func TestSyntheticHistoryRange(t *testing.T) {
	src := NewSynthetic(0)

	if _, err := src.History(context.Background(), "BTC", rangeTo, rangeFrom); err == nil {
		t.Error("Expected an error for an inverted range")
	}

	points, _ := src.History(context.Background(), "BTC", rangeFrom.Add(30*time.Minute), rangeFrom.Add(3*time.Hour))
	if len(points) != 3 || points[0].Timestamp != rangeFrom.Add(time.Hour).Unix() {
		t.Errorf("Expected to start on the next whole hour, got %d points", len(points))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.History(ctx, "BTC", rangeFrom, rangeTo); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

type fakeKite struct {
	token    int
	interval string
	err      error
}

func (f *fakeKite) GetHistoricalData(instrumentToken int, interval string, fromDate time.Time, toDate time.Time, continuous bool, OI bool) ([]kiteconnect.HistoricalData, error) {
	f.token = instrumentToken
	f.interval = interval
	if f.err != nil {
		return nil, f.err
	}
	return []kiteconnect.HistoricalData{
		{Date: models.Time{Time: fromDate}, Close: 101.5, Volume: 1200},
		{Date: models.Time{Time: fromDate.Add(time.Hour)}, Close: 102.25, Volume: 900},
	}, nil
}

func TestKiteHistory(t *testing.T) {
	client := &fakeKite{}
	src := newKiteWithClient(client, map[string]int{"reliance": 738561})

	points, err := src.History(context.Background(), "RELIANCE", rangeFrom, rangeTo)
	if err != nil {
		t.Fatal(err)
	}
	if client.token != 738561 || client.interval != "60minute" {
		t.Errorf("unexpected request token=%d interval=%s", client.token, client.interval)
	}
	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}
	if points[1].Price.String() != "102.25" || points[1].Timestamp != rangeFrom.Add(time.Hour).Unix() {
		t.Errorf("unexpected point %+v", points[1])
	}
	if points[0].Volume == nil || points[0].Volume.String() != "1200" {
		t.Errorf("Expected volume 1200, got %v", points[0].Volume)
	}

	if _, err := src.History(context.Background(), "TCS", rangeFrom, rangeTo); err == nil {
		t.Error("Expected an error for an unmapped symbol")
	}

	client.err = errors.New("token expired")
	if _, err := src.History(context.Background(), "RELIANCE", rangeFrom, rangeTo); err == nil {
		t.Error("Expected the client error to surface")
	}
}

func TestCoinGeckoHistory(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"prices":[[1704153600000,42000.5],[1704157200000,42100.25]],"total_volumes":[[1704153600000,123.4]]}`)
	}))
	defer srv.Close()

	src := NewCoinGecko(srv.URL, nil, 5*time.Second)
	points, err := src.History(context.Background(), "btc", rangeFrom, rangeTo)
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "/coins/bitcoin/market_chart/range" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if !strings.Contains(gotQuery, "vs_currency=usd") || !strings.Contains(gotQuery, "from=1704153600") {
		t.Errorf("unexpected query %s", gotQuery)
	}
	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}
	if points[0].Timestamp != 1704153600 || points[0].Price.String() != "42000.5" {
		t.Errorf("unexpected first point %+v", points[0])
	}
	if points[0].Volume == nil || points[0].Volume.String() != "123.4" {
		t.Errorf("Expected matched volume, got %v", points[0].Volume)
	}
	if points[1].Volume != nil {
		t.Errorf("Expected no volume for the second point, got %s", points[1].Volume)
	}
}

func TestCoinGeckoRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"prices":[[1704153600000,1]],"total_volumes":[]}`)
	}))
	defer srv.Close()

	src := NewCoinGecko(srv.URL, map[string]string{"pepe": "pepe"}, 5*time.Second)
	src.retry = &api.RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: time.Millisecond}

	points, err := src.History(context.Background(), "PEPE", rangeFrom, rangeTo)
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 || len(points) != 1 {
		t.Errorf("Expected one retry and 1 point, got %d calls and %d points", calls.Load(), len(points))
	}

	if _, err := src.History(context.Background(), "UNKNOWN", rangeFrom, rangeTo); err == nil {
		t.Error("Expected an error for an unmapped symbol")
	}
}

type countingPrices struct {
	calls int
	inner *Synthetic
}

func (c *countingPrices) History(ctx context.Context, symbol string, from, to time.Time) ([]types.PricePoint, error) {
	c.calls++
	return c.inner.History(ctx, symbol, from, to)
}

func TestCachedHistory(t *testing.T) {
	inner := &countingPrices{inner: NewSynthetic(0.01)}
	cached := NewCached(inner, 0)
	ctx := context.Background()

	first, err := cached.History(ctx, "BTC", rangeFrom, rangeTo)
	if err != nil {
		t.Fatal(err)
	}

	sub, err := cached.History(ctx, "BTC", rangeFrom.Add(2*time.Hour), rangeFrom.Add(5*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("Expected a covered sub-range to be served from cache, got %d calls", inner.calls)
	}
	if len(sub) != 4 || !sub[0].Price.Equal(first[2].Price) {
		t.Errorf("Expected 4 cached points starting at the third, got %d", len(sub))
	}

	if _, err := cached.History(ctx, "BTC", rangeFrom, rangeTo.Add(2*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("Expected an uncovered range to hit the source, got %d calls", inner.calls)
	}

	if _, err := cached.History(ctx, "ETH", rangeFrom, rangeTo); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 3 {
		t.Errorf("Expected symbols to be cached separately, got %d calls", inner.calls)
	}

	cached.Clear()
	if _, err := cached.History(ctx, "BTC", rangeFrom, rangeTo); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 4 {
		t.Errorf("Expected Clear to drop buffers, got %d calls", inner.calls)
	}
}

func TestCachedHistoryCapacity(t *testing.T) {
	inner := &countingPrices{inner: NewSynthetic(0.01)}
	cached := NewCached(inner, 10)
	ctx := context.Background()

	if _, err := cached.History(ctx, "BTC", rangeFrom, rangeTo); err != nil {
		t.Fatal(err)
	}

	// The oldest points were evicted, so the full range is no longer covered
	if _, err := cached.History(ctx, "BTC", rangeFrom, rangeTo); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("Expected a refetch after eviction, got %d calls", inner.calls)
	}

	tail, err := cached.History(ctx, "BTC", rangeTo.Add(-5*time.Hour), rangeTo)
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 || len(tail) != 6 {
		t.Errorf("Expected the retained tail from cache, got %d calls and %d points", inner.calls, len(tail))
	}
}
