package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"sentiment-trading/internal/correlation"
	"sentiment-trading/internal/dashboard"
	"sentiment-trading/internal/interfaces"
	"sentiment-trading/internal/news"
	"sentiment-trading/internal/nlp"
	"sentiment-trading/internal/signals"
	"sentiment-trading/internal/store"
	"sentiment-trading/internal/types"
)

const section = "═══════════════════════════════════════════════════════════"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func header(w io.Writer, title string) {
	fmt.Fprintln(w, section)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, section)
	fmt.Fprintln(w)
}

// runDemo walks through scoring, signal generation, price analysis and the
// dashboard on fixed inputs and the mock articles
func runDemo(w io.Writer, cfg *store.Config) {
	fmt.Fprintln(w, "╔════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║   Advanced Sentiment Analysis & Signal Generation Demo     ║")
	fmt.Fprintln(w, "╚════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)

	demoSentiment(w)
	demoSignals(w, cfg.MinConfidence())
	demoPrices(w)
	demoDashboard(w, cfg)

	fmt.Fprintln(w, "\n✅ All demonstrations completed successfully!")
}

func demoSentiment(w io.Writer) {
	header(w, "📊 Part 1: NLP Sentiment Analysis")

	cases := []struct{ text, expected string }{
		{"Bitcoin surges to record high with strong gains", "Very Positive"},
		{"Market crashes amid fears and concerns", "Very Negative"},
		{"Trading volume remains steady today", "Neutral"},
		{"Ethereum shows excellent performance and growth", "Positive"},
	}

	for i, c := range cases {
		fmt.Fprintf(w, "Test #%d: %s\n", i+1, c.expected)
		fmt.Fprintf(w, "Text: %q\n", c.text)

		sentiment := nlp.Analyze(types.Article{Title: c.text, Source: "Test"})
		fmt.Fprintln(w, dashboard.FormatSentiment(sentiment))

		if entities := nlp.ExtractEntities(c.text); len(entities) > 0 {
			fmt.Fprintf(w, "🏷️  Entities: %s\n", strings.Join(entities, ", "))
		}
		fmt.Fprintln(w)
	}
}

func demoSignals(w io.Writer, minConfidence decimal.Decimal) {
	header(w, "🎯 Part 2: Trading Signal Generation")

	cases := []struct {
		pos, neg, neu, symbol, description string
	}{
		{"0.90", "0.05", "0.05", "BTC", "Strong Buy"},
		{"0.05", "0.90", "0.05", "ETH", "Strong Sell"},
		{"0.35", "0.35", "0.30", "BNB", "Hold"},
		{"0.70", "0.20", "0.10", "ADA", "Moderate Buy"},
	}

	for _, c := range cases {
		fmt.Fprintf(w, "Test: %s\n", c.description)

		sentiment := types.NewSentimentScore(dec(c.pos), dec(c.neg), dec(c.neu))
		signal, signalType := signals.GenerateWithType(sentiment, c.symbol)

		fmt.Fprintln(w, dashboard.FormatSignal(signal, signalType))
		fmt.Fprintf(w, "Signal Strength: %d/100\n", signals.Strength(sentiment))

		actionable := "❌ No"
		if signals.IsActionable(signal, minConfidence) {
			actionable = "✅ Yes"
		}
		fmt.Fprintf(w, "Actionable (>=%s%% confidence): %s\n\n", minConfidence.Mul(decimal.NewFromInt(100)).StringFixed(0), actionable)
	}
}

func demoPrices(w io.Writer) {
	header(w, "📈 Part 3: Price Correlation Analysis")

	var (
		bullish = types.NewSentimentScore(dec("0.85"), dec("0.05"), dec("0.10"))
		bearish = types.NewSentimentScore(dec("0.05"), dec("0.85"), dec("0.10"))
		mixed   = types.NewSentimentScore(dec("0.3"), dec("0.3"), dec("0.4"))
		three   = dec("3")
		vol     = dec("0.05")
	)

	scenarios := []struct{ from, to, name string }{
		{"50000", "55000", "Bull Run"},
		{"50000", "45000", "Bear Market"},
		{"50000", "50500", "Sideways"},
	}

	for _, sc := range scenarios {
		oldPrice, newPrice := dec(sc.from), dec(sc.to)
		fmt.Fprintf(w, "Scenario: %s\n", sc.name)
		fmt.Fprintf(w, "Old Price: $%s\n", oldPrice)
		fmt.Fprintf(w, "New Price: $%s\n", newPrice)

		change := correlation.PriceChangePercent(oldPrice, newPrice)
		fmt.Fprintf(w, "Price Change: %s\n", dashboard.FormatPriceChange(change))

		sentiment := mixed
		switch {
		case change.GreaterThan(three):
			sentiment = bullish
		case change.LessThan(three.Neg()):
			sentiment = bearish
		}

		fmt.Fprintf(w, "Predicted Direction: %s\n", dashboard.FormatDirection(correlation.PredictDirection(sentiment)))
		fmt.Fprintf(w, "Price Target: $%s\n\n", correlation.PriceTarget(newPrice, sentiment, vol).StringFixed(2))
	}
}

func demoDashboard(w io.Writer, cfg *store.Config) {
	header(w, "📊 Part 4: Complete Dashboard Demo")

	serviceConfig := news.DefaultServiceConfig()
	serviceConfig.MinConfidence = cfg.MinConfidence()
	serviceConfig.DefaultSymbol = cfg.Analysis.DefaultSymbol
	serviceConfig.WordBoundaryEntities = cfg.Analysis.WordBoundaryEntities

	service := news.NewService([]interfaces.ArticleSource{news.NewMockSource()}, serviceConfig)
	defer service.Close()

	articles := news.SampleArticles()
	fmt.Fprintf(w, "Processing %d articles...\n\n", len(articles))

	analyses := make([]news.Analysis, 0, len(articles))
	for i, article := range articles {
		fmt.Fprintf(w, "%s Processing article %d of %d\n", dashboard.ProgressBar(i+1, len(articles), 30), i+1, len(articles))
		analyses = append(analyses, service.AnalyzeArticle(article))
	}
	fmt.Fprintln(w)

	dashboard.CreateDashboard(w, analyses)
}
