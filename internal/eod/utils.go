package eod

import (
	"path/filepath"
	"time"

	"sentiment-trading/internal/signallog"
)

// now is swapped in tests
var now = time.Now

func utcNow() time.Time {
	return now().UTC()
}

func eodCSVPath(t time.Time) string {
	return filepath.Join(signallog.Dir(), "eod", t.UTC().Format("2006-01-02")+".csv")
}

// dayCloseTime is when the daily summary becomes due
func dayCloseTime(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 55, 0, 0, time.UTC)
}
