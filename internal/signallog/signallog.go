package signallog

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"sentiment-trading/internal/news"
	"sentiment-trading/internal/types"
)

const ext = ".jsonl"

var mu sync.Mutex

// now is swapped in tests
var now = time.Now

// Entry is one generated signal as persisted in the daily log
type Entry struct {
	Time       time.Time            `json:"time"`
	Query      string               `json:"query,omitempty"`
	Symbol     string               `json:"symbol"`
	Signal     types.SignalType     `json:"signal"`
	Confidence decimal.Decimal      `json:"confidence"`
	Strength   int                  `json:"strength"`
	Direction  types.PriceDirection `json:"direction"`
	Actionable bool                 `json:"actionable"`
	Sentiment  types.SentimentScore `json:"sentiment"`
	Source     string               `json:"source"`
	Title      string               `json:"title"`
	Published  int64                `json:"published,omitempty"`
}

// SampleTime is the article's publication time, or the log time when the
// article carried none
func (e Entry) SampleTime() int64 {
	if e.Published > 0 {
		return e.Published
	}
	return e.Time.Unix()
}

// FromAnalysis flattens an analysis into a log entry
func FromAnalysis(query string, a news.Analysis) Entry {
	return Entry{
		Query:      query,
		Symbol:     a.Signal.Symbol,
		Signal:     a.Type,
		Confidence: a.Signal.Confidence,
		Strength:   a.Strength,
		Direction:  a.Direction,
		Actionable: a.Actionable,
		Sentiment:  a.Sentiment,
		Source:     a.Article.Source,
		Title:      a.Article.Title,
		Published:  a.Article.Timestamp,
	}
}

// Dir is the log root, SIGNAL_LOG_DIR or "logs"
func Dir() string {
	if v := os.Getenv("SIGNAL_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

// DailyPath is the log file holding entries for t's UTC date
func DailyPath(t time.Time) string {
	return filepath.Join(Dir(), t.UTC().Format("2006-01-02")+ext)
}

// Append stamps e with the current time when unset and appends it to the
// day's file.
func Append(e Entry) error {
	return AppendAll([]Entry{e})
}

// AppendAll writes entries under a single lock
func AppendAll(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	stamp := now().UTC()
	files := map[string]*os.File{}
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	for _, e := range entries {
		if e.Time.IsZero() {
			e.Time = stamp
		}
		p := DailyPath(e.Time)

		f := files[p]
		if f == nil {
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return err
			}
			var err error
			f, err = os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return err
			}
			files[p] = f
		}

		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode signal for %s: %w", e.Symbol, err)
		}
		if _, err := fmt.Fprintln(f, string(b)); err != nil {
			return err
		}
	}
	return nil
}

// ReadDay returns the entries logged on t's UTC date, falling back to the
// compressed file. A missing day yields no entries and no error. Lines that
// fail to decode are skipped.
func ReadDay(t time.Time) ([]Entry, error) {
	p := DailyPath(t)

	var r io.Reader
	f, err := os.Open(p)
	switch {
	case err == nil:
		defer f.Close()
		r = f
	case errors.Is(err, fs.ErrNotExist):
		gz, gzErr := os.Open(p + ".gz")
		if errors.Is(gzErr, fs.ErrNotExist) {
			return nil, nil
		}
		if gzErr != nil {
			return nil, gzErr
		}
		defer gz.Close()
		zr, zErr := gzip.NewReader(gz)
		if zErr != nil {
			return nil, fmt.Errorf("open %s.gz: %w", p, zErr)
		}
		defer zr.Close()
		r = zr
	default:
		return nil, err
	}

	var entries []Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, sc.Err()
}

// CompressOlder gzips daily files last modified more than retentionDays ago.
// Non-positive retention is a no-op.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	cutoff := now().AddDate(0, 0, -retentionDays)
	var errs []error

	err := filepath.WalkDir(Dir(), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ext {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := compress(p); err != nil {
			errs = append(errs, err)
		}
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func compress(p string) error {
	gz := p + ".gz"
	// already compressed on an earlier run
	if _, err := os.Stat(gz); err == nil {
		return os.Remove(p)
	}

	in, err := os.Open(p)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	gw := gzip.NewWriter(out)
	_, copyErr := io.Copy(gw, in)
	closeErr := errors.Join(gw.Close(), out.Close())
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(gz)
		return fmt.Errorf("compress %s: %w", p, err)
	}

	in.Close()
	return os.Remove(p)
}
