package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func captureJSON(t *testing.T, detailed bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	InitWithConfig(LogConfig{Level: "DEBUG", Format: "json", DetailedLogging: detailed, Output: &buf})
	t.Cleanup(func() { InitWithConfig(LogConfig{Level: "INFO", Format: "text"}) })
	return &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestSignalIsAlwaysLogged(t *testing.T) {
	buf := captureJSON(t, false)

	Signal(context.Background(), "BTC", "BUY", decimal.RequireFromString("0.85"), "source", "CoinDesk")

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	entry := lines[0]
	if entry["type"] != "SIGNAL" || entry["symbol"] != "BTC" || entry["action"] != "BUY" {
		t.Errorf("unexpected signal entry %v", entry)
	}
	if entry["confidence"] != "0.85" {
		t.Errorf("Expected confidence as decimal string, got %v", entry["confidence"])
	}
	if entry["source"] != "CoinDesk" {
		t.Errorf("Expected extra field to be kept, got %v", entry["source"])
	}
}

func TestDebugRequiresDetailedLogging(t *testing.T) {
	buf := captureJSON(t, false)
	Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected debug to be dropped, got %q", buf.String())
	}

	buf = captureJSON(t, true)
	Debug(context.Background(), "shown")
	lines := decodeLines(t, buf)
	if len(lines) != 1 || lines[0]["msg"] != "shown" {
		t.Fatalf("Expected one debug line, got %v", lines)
	}
	if _, ok := lines[0]["source"]; !ok {
		t.Error("Expected source information with detailed logging")
	}
}

func TestErrorWithErr(t *testing.T) {
	buf := captureJSON(t, false)

	ErrorWithErr(context.Background(), "fetch failed", errors.New("boom"), "source", "rss")

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0]["error"] != "boom" || lines[0]["level"] != "ERROR" {
		t.Errorf("unexpected error entry %v", lines[0])
	}
}

func TestOperationTimerEndWithError(t *testing.T) {
	buf := captureJSON(t, false)

	op := StartOperation(context.Background(), "analyze", "query", "bitcoin")
	op.EndWithError(errors.New("no sources"))

	lines := decodeLines(t, buf)
	if len(lines) != 1 || lines[0]["msg"] != "Operation failed" {
		t.Fatalf("Expected an operation failure line, got %v", lines)
	}
	if lines[0]["query"] != "bitcoin" {
		t.Errorf("Expected start fields to be carried, got %v", lines[0])
	}
}

func TestParseLogLevel(t *testing.T) {
	if parseLogLevel("debug").String() != "DEBUG" {
		t.Error("Expected case-insensitive DEBUG")
	}
	if parseLogLevel("bogus").String() != "INFO" {
		t.Error("Expected INFO fallback")
	}
}
