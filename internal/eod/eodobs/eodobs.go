package eodobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"sentiment-trading/internal/interfaces"
	"sentiment-trading/internal/logger"
	"sentiment-trading/internal/trace"
)

type observableSummarizer struct {
	summarizer interfaces.EodSummarizer
}

var _ interfaces.EodSummarizer = (*observableSummarizer)(nil)

func Wrap(summarizer interfaces.EodSummarizer) interfaces.EodSummarizer {
	return &observableSummarizer{
		summarizer: summarizer,
	}
}

func (o *observableSummarizer) SummarizeDay(t time.Time) (string, error) {
	date := t.UTC().Format("2006-01-02")
	return o.summarize("eod.SummarizeDay", date, func() (string, error) {
		return o.summarizer.SummarizeDay(t)
	})
}

func (o *observableSummarizer) SummarizeToday() (string, error) {
	date := time.Now().UTC().Format("2006-01-02")
	return o.summarize("eod.SummarizeToday", date, o.summarizer.SummarizeToday)
}

func (o *observableSummarizer) summarize(spanName, date string, fn func() (string, error)) (string, error) {
	ctx, span := trace.StartSpan(context.Background(), spanName)
	defer span.End()
	span.SetAttributes(attribute.String("date", date))

	logger.InfoSkip(ctx, 2, "Generating signal summary", "date", date)

	csvPath, err := fn()
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 2, "Signal summary failed", err, "date", date)
		return "", err
	}

	if csvPath == "" {
		logger.InfoSkip(ctx, 2, "No signals logged for summary", "date", date)
		return "", nil
	}

	span.SetAttributes(attribute.String("csv_path", csvPath))
	logger.InfoSkip(ctx, 2, "Signal summary written",
		"date", date,
		"csv_path", csvPath,
	)
	return csvPath, nil
}

func (o *observableSummarizer) ShouldRunNow() (bool, string) {
	ctx, span := trace.StartSpan(context.Background(), "eod.ShouldRunNow")
	defer span.End()

	shouldRun, csvPath := o.summarizer.ShouldRunNow()

	logger.DebugSkip(ctx, 1, "Summary schedule checked",
		"should_run", shouldRun,
		"csv_path", csvPath,
	)
	return shouldRun, csvPath
}
