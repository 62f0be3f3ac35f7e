package ta

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"sentiment-trading/internal/types"
)

func points(vals ...string) []types.PricePoint {
	out := make([]types.PricePoint, 0, len(vals))
	for i, v := range vals {
		out = append(out, types.PricePoint{
			Timestamp: int64(i) * 3600,
			Price:     decimal.RequireFromString(v),
		})
	}
	return out
}

func TestSMA(t *testing.T) {
	if got := SMA([]float64{1, 2, 3, 4}, 2); got != 3.5 {
		t.Errorf("Expected 3.5, got %v", got)
	}
	if !math.IsNaN(SMA([]float64{1}, 2)) {
		t.Error("Expected NaN for short input")
	}
}

func TestStdDev(t *testing.T) {
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8)
	if got != 2 {
		t.Errorf("Expected 2, got %v", got)
	}
}

func TestReturns(t *testing.T) {
	got := Returns(points("100", "110", "99"))
	if len(got) != 2 {
		t.Fatalf("Expected 2 returns, got %d", len(got))
	}
	if math.Abs(got[0]-0.1) > 1e-12 || math.Abs(got[1]+0.1) > 1e-12 {
		t.Errorf("unexpected returns %v", got)
	}

	if got := Returns(points("0", "10")); got[0] != 0 {
		t.Errorf("Expected zero return after a zero price, got %v", got[0])
	}
	if Returns(points("100")) != nil {
		t.Error("Expected nil for a single price")
	}
}

func TestHistoricalVolatility(t *testing.T) {
	// Returns +10% and -10% have population stddev 0.1
	got := HistoricalVolatility(points("100", "110", "99"))
	if !got.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("Expected 0.1, got %s", got)
	}

	flat := HistoricalVolatility(points("100", "100", "100"))
	if !flat.IsZero() {
		t.Errorf("Expected 0 for flat prices, got %s", flat)
	}

	if !HistoricalVolatility(points("100", "110")).IsZero() {
		t.Error("Expected 0 with a single return")
	}
}
