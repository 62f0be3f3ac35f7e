package signallog

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sentiment-trading/internal/news"
	"sentiment-trading/internal/types"
)

var day = time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SIGNAL_LOG_DIR", dir)
	now = func() time.Time { return day }
	t.Cleanup(func() { now = time.Now })
	return dir
}

func TestAppendAndReadDay(t *testing.T) {
	dir := setup(t)

	err := AppendAll([]Entry{
		{Symbol: "BTC", Signal: types.Buy, Confidence: decimal.RequireFromString("0.85"), Actionable: true},
		{Symbol: "ETH", Signal: types.Sell, Confidence: decimal.RequireFromString("0.75")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := Append(Entry{Symbol: "SOL", Signal: types.Hold}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "2024-01-02.jsonl")); err != nil {
		t.Fatalf("Expected daily file: %v", err)
	}

	entries, err := ReadDay(day)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Symbol != "BTC" || entries[0].Signal != types.Buy || !entries[0].Actionable {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
	if !entries[1].Confidence.Equal(decimal.RequireFromString("0.75")) {
		t.Errorf("Expected confidence 0.75, got %s", entries[1].Confidence)
	}
	if !entries[2].Time.Equal(day) {
		t.Errorf("Expected stamped time %v, got %v", day, entries[2].Time)
	}
}

func TestReadDayMissing(t *testing.T) {
	setup(t)

	entries, err := ReadDay(day)
	if err != nil || entries != nil {
		t.Errorf("Expected no entries and no error, got %v, %v", entries, err)
	}
}

func TestReadDaySkipsMalformedLines(t *testing.T) {
	dir := setup(t)

	content := `{"symbol":"BTC","signal":"BUY","confidence":"0.9"}
not json

{"symbol":"ETH","signal":"SELL","confidence":"0.8"}
`
	if err := os.WriteFile(filepath.Join(dir, "2024-01-02.jsonl"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := ReadDay(day)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[1].Signal != types.Sell {
		t.Errorf("Expected 2 valid entries, got %+v", entries)
	}
}

func TestCompressOlder(t *testing.T) {
	dir := setup(t)

	if err := Append(Entry{Symbol: "BTC", Signal: types.Buy}); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, "2024-01-02.jsonl")
	old := day.AddDate(0, 0, -10)
	if err := os.Chtimes(p, old, old); err != nil {
		t.Fatal(err)
	}

	fresh := filepath.Join(dir, "2024-01-01.jsonl")
	if err := os.WriteFile(fresh, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(fresh, day, day); err != nil {
		t.Fatal(err)
	}

	if err := CompressOlder(7); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Error("Expected the old file to be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("Expected the recent file to be kept")
	}

	f, err := os.Open(p + ".gz")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := gzip.NewReader(f); err != nil {
		t.Errorf("Expected a valid gzip file: %v", err)
	}

	entries, err := ReadDay(day)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Symbol != "BTC" {
		t.Errorf("Expected to read back the compressed day, got %+v", entries)
	}
}

func TestCompressOlderDisabled(t *testing.T) {
	setup(t)
	if err := CompressOlder(0); err != nil {
		t.Errorf("Expected no-op, got %v", err)
	}
}

func TestFromAnalysis(t *testing.T) {
	a := news.Analysis{
		Article:    types.Article{Title: "Bitcoin rallies", Source: "CoinDesk", Timestamp: 1704153600},
		Signal:     types.Signal{Symbol: "BTC", Confidence: decimal.RequireFromString("0.9")},
		Type:       types.Buy,
		Strength:   90,
		Direction:  types.Up,
		Actionable: true,
	}

	e := FromAnalysis("bitcoin", a)
	if e.Query != "bitcoin" || e.Symbol != "BTC" || e.Signal != types.Buy || e.Source != "CoinDesk" || e.Strength != 90 {
		t.Errorf("unexpected entry %+v", e)
	}
	if !e.Time.IsZero() {
		t.Error("Expected time to be left for Append to stamp")
	}
	if e.SampleTime() != 1704153600 {
		t.Errorf("Expected the publication time as sample time, got %d", e.SampleTime())
	}

	e.Published = 0
	e.Time = day
	if e.SampleTime() != day.Unix() {
		t.Errorf("Expected the log time as fallback, got %d", e.SampleTime())
	}
}
