package eod

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"sentiment-trading/internal/signallog"
	"sentiment-trading/internal/types"
)

type eodSummarizer struct{}

var csvHeader = []string{"symbol", "signals", "buy", "sell", "hold", "actionable", "avg_confidence"}

// SummarizeDay writes a per-symbol CSV of the signals logged on t's UTC date.
// A day without signals yields an empty path and no error.
func (s *eodSummarizer) SummarizeDay(t time.Time) (string, error) {
	entries, err := signallog.ReadDay(t)
	if err != nil {
		return "", err
	}

	rows := aggregate(entries)
	if len(rows) == 0 {
		return "", nil
	}

	outPath := eodCSVPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}

	total := &summaryRow{Symbol: "TOTAL", ConfidenceSum: decimal.Zero}
	for _, r := range rows {
		if err := w.Write(record(r)); err != nil {
			return "", err
		}
		total.Buy += r.Buy
		total.Sell += r.Sell
		total.Hold += r.Hold
		total.Actionable += r.Actionable
		total.ConfidenceSum = total.ConfidenceSum.Add(r.ConfidenceSum)
	}
	if err := w.Write(record(total)); err != nil {
		return "", err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write %s: %w", outPath, err)
	}
	return outPath, nil
}

func (s *eodSummarizer) SummarizeToday() (string, error) {
	return s.SummarizeDay(utcNow())
}

// ShouldRunNow is true once the day closes and its CSV does not exist yet
func (s *eodSummarizer) ShouldRunNow() (bool, string) {
	t := utcNow()
	outPath := eodCSVPath(t)
	if t.After(dayCloseTime(t)) {
		if _, err := os.Stat(outPath); errors.Is(err, os.ErrNotExist) {
			return true, outPath
		}
	}
	return false, outPath
}

// aggregate groups entries by symbol, sorted by symbol
func aggregate(entries []signallog.Entry) []*summaryRow {
	bySymbol := map[string]*summaryRow{}
	for _, e := range entries {
		if e.Symbol == "" {
			continue
		}
		row := bySymbol[e.Symbol]
		if row == nil {
			row = &summaryRow{Symbol: e.Symbol, ConfidenceSum: decimal.Zero}
			bySymbol[e.Symbol] = row
		}
		switch e.Signal {
		case types.Buy:
			row.Buy++
		case types.Sell:
			row.Sell++
		default:
			row.Hold++
		}
		if e.Actionable {
			row.Actionable++
		}
		row.ConfidenceSum = row.ConfidenceSum.Add(e.Confidence)
	}

	rows := make([]*summaryRow, 0, len(bySymbol))
	for _, r := range bySymbol {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Symbol < rows[j].Symbol })
	return rows
}

func record(r *summaryRow) []string {
	return []string{
		r.Symbol,
		strconv.Itoa(r.total()),
		strconv.Itoa(r.Buy),
		strconv.Itoa(r.Sell),
		strconv.Itoa(r.Hold),
		strconv.Itoa(r.Actionable),
		r.avgConfidence().StringFixed(4),
	}
}
