package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"sentiment-trading/internal/correlation"
	"sentiment-trading/internal/dashboard"
	"sentiment-trading/internal/eod"
	"sentiment-trading/internal/logger"
	"sentiment-trading/internal/news"
	"sentiment-trading/internal/signallog"
	"sentiment-trading/internal/store"
	"sentiment-trading/internal/ta"
	"sentiment-trading/internal/types"
)

var (
	configPath string
	cfg        *store.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = logger.Shutdown(shutdownCtx)

	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sentiment",
		Short:        "News sentiment analysis and trading signal generation",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initializeSystem(); err != nil {
				return err
			}
			loaded, err := loadConfig(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			compressOldLogs(cmd.Context(), cfg)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to config.yaml")

	root.AddCommand(
		newDemoCmd(),
		newAnalyzeCmd(),
		newWatchCmd(),
		newCorrelateCmd(),
		newSummarizeCmd(),
	)
	return root
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through sentiment scoring, signals, price analysis and the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runDemo(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	var asJSON, noLog bool

	cmd := &cobra.Command{
		Use:   "analyze [query]",
		Short: "Fetch articles, analyse them and print the signal dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			service := initializeService(ctx, cfg)
			defer service.Close()

			analyses, err := service.Analyze(ctx, query)
			if err != nil {
				return err
			}

			if !noLog {
				if err := logAnalyses(query, analyses); err != nil {
					logger.Warn(ctx, "Failed to append signal log", "error", err)
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(analyses)
			}
			dashboard.CreateDashboard(cmd.OutOrStdout(), analyses)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print analyses as JSON")
	cmd.Flags().BoolVar(&noLog, "no-log", false, "do not append to the signal log")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch [query]",
		Short: "Re-analyse on an interval, logging signals and writing the daily summary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			service := initializeService(ctx, cfg)
			defer service.Close()

			tick := time.NewTicker(interval)
			defer tick.Stop()
			eodTick := time.NewTicker(60 * time.Second)
			defer eodTick.Stop()

			logger.Info(ctx, "Watcher started", "query", query, "interval", interval.String())
			refresh(ctx, cmd, service, query)

			for {
				select {
				case <-tick.C:
					refresh(ctx, cmd, service, query)
				case <-eodTick.C:
					if ok, _ := eod.ShouldRunNow(); ok {
						if p, err := eod.SummarizeToday(); err == nil && p != "" {
							fmt.Fprintln(cmd.OutOrStdout(), "EOD CSV written:", p)
						}
					}
				case <-ctx.Done():
					logger.Info(ctx, "Shutting down watcher")
					if p, err := eod.SummarizeToday(); err == nil && p != "" {
						fmt.Fprintln(cmd.OutOrStdout(), "EOD CSV written:", p)
					}
					return nil
				}
			}
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Minute, "time between refreshes")
	return cmd
}

func refresh(ctx context.Context, cmd *cobra.Command, service *news.Service, query string) {
	analyses, err := service.Refresh(ctx, query)
	if err != nil {
		logger.ErrorWithErr(ctx, "Refresh failed", err, "query", query)
		return
	}
	if err := logAnalyses(query, analyses); err != nil {
		logger.Warn(ctx, "Failed to append signal log", "error", err)
	}

	for _, a := range analyses {
		if a.Actionable {
			fmt.Fprintln(cmd.OutOrStdout(), dashboard.FormatSignal(a.Signal, a.Type))
		}
	}
}

func logAnalyses(query string, analyses []news.Analysis) error {
	entries := make([]signallog.Entry, len(analyses))
	for i, a := range analyses {
		entries[i] = signallog.FromAnalysis(query, a)
	}
	return signallog.AppendAll(entries)
}

func newCorrelateCmd() *cobra.Command {
	var maxLag int

	cmd := &cobra.Command{
		Use:   "correlate <symbol>",
		Short: "Correlate logged and current sentiment with price history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			symbol := strings.ToUpper(args[0])
			out := cmd.OutOrStdout()

			if !cmd.Flags().Changed("max-lag") {
				maxLag = cfg.Analysis.MaxLagHours
			}

			priceSource, err := initializePriceSource(ctx, cfg)
			if err != nil {
				return err
			}

			to := time.Now().UTC().Truncate(time.Hour)
			from := to.Add(-cfg.Lookback())

			points, err := priceSource.History(ctx, symbol, from, to)
			if err != nil {
				return fmt.Errorf("price history for %s: %w", symbol, err)
			}
			if len(points) == 0 {
				return fmt.Errorf("no price history for %s", symbol)
			}

			service := initializeService(ctx, cfg)
			defer service.Close()

			analyses, err := service.Analyze(ctx, "")
			if err != nil {
				return err
			}

			sentiments, err := timedSentiments(symbol, from, to, analyses)
			if err != nil {
				return err
			}

			result := correlation.CorrelationWithin(sentiments, points, maxLag)
			first, last := points[0].Price, points[len(points)-1].Price

			fmt.Fprintf(out, "📈 %s: %d price points, %d sentiment samples\n", symbol, len(points), len(sentiments))
			fmt.Fprintf(out, "Price Change: %s\n\n", dashboard.FormatPriceChange(correlation.PriceChangePercent(first, last)))

			dashboard.LagTable(out, correlation.SentimentLagCurve(sentiments, points, maxLag))

			fmt.Fprintf(out, "\nBest Correlation: %s at %dh lag (n=%d)\n",
				result.CorrelationCoefficient.StringFixed(4), result.LagHours, result.SampleSize)

			if len(sentiments) == 0 {
				fmt.Fprintln(out, "No sentiment samples for this symbol yet; run analyze or watch first.")
				return nil
			}

			sentiment := averageSentiment(sentiments)
			volatility := cfg.Volatility()
			if volatility.IsZero() {
				volatility = ta.HistoricalVolatility(points)
			}

			fmt.Fprintln(out, dashboard.FormatSentiment(sentiment))
			fmt.Fprintf(out, "Predicted Direction: %s\n", dashboard.FormatDirection(correlation.PredictDirection(sentiment)))
			fmt.Fprintf(out, "Price Target: %s (volatility %s)\n",
				correlation.PriceTarget(last, sentiment, volatility).StringFixed(2), volatility.StringFixed(4))
			return nil
		},
	}
	cmd.Flags().IntVar(&maxLag, "max-lag", correlation.DefaultMaxLagHours, "largest lag in hours to search")
	return cmd
}

// timedSentiments collects symbol's samples within [from, to] from the
// signal log and the fresh analyses, skipping duplicates of the same article
func timedSentiments(symbol string, from, to time.Time, analyses []news.Analysis) ([]types.TimedSentiment, error) {
	seen := map[string]bool{}
	var samples []types.TimedSentiment

	add := func(ts int64, title string, score types.SentimentScore) {
		if ts < from.Unix() || ts > to.Unix() {
			return
		}
		key := fmt.Sprintf("%d|%s", ts, title)
		if seen[key] {
			return
		}
		seen[key] = true
		samples = append(samples, types.TimedSentiment{Timestamp: ts, Score: score})
	}

	for d := from.UTC().Truncate(24 * time.Hour); !d.After(to); d = d.AddDate(0, 0, 1) {
		entries, err := signallog.ReadDay(d)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Symbol == symbol {
				add(e.SampleTime(), e.Title, e.Sentiment)
			}
		}
	}

	for _, a := range analyses {
		if a.Signal.Symbol == symbol {
			add(a.Article.Timestamp, a.Article.Title, a.Sentiment)
		}
	}
	return samples, nil
}

// averageSentiment is the component-wise mean of the samples
func averageSentiment(samples []types.TimedSentiment) types.SentimentScore {
	if len(samples) == 0 {
		return types.SentimentScore{}
	}
	n := decimal.NewFromInt(int64(len(samples)))
	var pos, neg, neu decimal.Decimal
	for _, s := range samples {
		pos = pos.Add(s.Score.Positive)
		neg = neg.Add(s.Score.Negative)
		neu = neu.Add(s.Score.Neutral)
	}
	return types.NewSentimentScore(pos.Div(n), neg.Div(n), neu.Div(n))
}

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize [YYYY-MM-DD]",
		Short: "Write the per-symbol signal summary CSV for a day (default today, UTC)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now().UTC()
			if len(args) == 1 {
				parsed, err := time.Parse("2006-01-02", args[0])
				if err != nil {
					return fmt.Errorf("invalid date %q: %w", args[0], err)
				}
				day = parsed
			}

			p, err := eod.SummarizeDay(day)
			if err != nil {
				return err
			}
			if p == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "No signals logged on %s\n", day.Format("2006-01-02"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "EOD CSV written:", p)
			return nil
		},
	}
}
