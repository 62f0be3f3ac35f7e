package dashboard

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"sentiment-trading/internal/news"
	"sentiment-trading/internal/types"
)

const rule = "════════════════════════════════════════════════════════════"

var (
	hundred             = decimal.NewFromInt(100)
	highConfidenceLevel = decimal.RequireFromString("0.8")
)

func percent(d decimal.Decimal, places int32) string {
	return d.Mul(hundred).StringFixed(places)
}

// FormatSentiment renders the three components as percentages
func FormatSentiment(sentiment types.SentimentScore) string {
	return fmt.Sprintf(
		"📊 Sentiment Scores:\n  🟢 Positive: %s%%\n  🔴 Negative: %s%%\n  ⚪ Neutral: %s%%",
		percent(sentiment.Positive, 2),
		percent(sentiment.Negative, 2),
		percent(sentiment.Neutral, 2),
	)
}

func signalEmoji(signalType types.SignalType) string {
	switch signalType {
	case types.Buy:
		return "🟢"
	case types.Sell:
		return "🔴"
	default:
		return "🟡"
	}
}

// FormatSignal renders e.g. "🟢 BUY Signal for BTC (Confidence: 85.0%)"
func FormatSignal(signal types.Signal, signalType types.SignalType) string {
	return fmt.Sprintf("%s %s Signal for %s (Confidence: %s%%)",
		signalEmoji(signalType),
		signalType,
		signal.Symbol,
		percent(signal.Confidence, 1),
	)
}

// FormatArticle renders an article header
func FormatArticle(article types.Article) string {
	return fmt.Sprintf("📰 Article\n  Title: %s\n  Source: %s\n  Timestamp: %d",
		article.Title, article.Source, article.Timestamp)
}

// FormatDirection renders a predicted direction with an arrow
func FormatDirection(direction types.PriceDirection) string {
	switch direction {
	case types.Up:
		return "📈 UP"
	case types.Down:
		return "📉 DOWN"
	default:
		return "➡️ NEUTRAL"
	}
}

// FormatPriceChange renders a percent change with an arrow and 2 decimals
func FormatPriceChange(change decimal.Decimal) string {
	switch {
	case change.IsPositive():
		return "📈 " + change.StringFixed(2) + "%"
	case change.IsNegative():
		return "📉 " + change.StringFixed(2) + "%"
	default:
		return "➡️ " + change.StringFixed(2) + "%"
	}
}

// CreateDashboard writes a summary of analyses followed by a signal table
func CreateDashboard(w io.Writer, analyses []news.Analysis) {
	fmt.Fprintln(w, "╔════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║     Sentiment Analysis Trading Dashboard                   ║")
	fmt.Fprintln(w, "╚════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)

	counts := map[types.SignalType]int{}
	actionable := 0
	for _, a := range analyses {
		counts[a.Type]++
		if a.Actionable {
			actionable++
		}
	}

	fmt.Fprintln(w, "📊 Summary:")
	fmt.Fprintf(w, "  Articles Analyzed: %d\n", len(analyses))
	fmt.Fprintf(w, "  Signals Generated: %d (BUY %d, SELL %d, HOLD %d)\n",
		len(analyses), counts[types.Buy], counts[types.Sell], counts[types.Hold])
	fmt.Fprintf(w, "  Actionable Signals: %d\n\n", actionable)

	if len(analyses) > 0 {
		n := decimal.NewFromInt(int64(len(analyses)))
		positive, negative, confidence := decimal.Zero, decimal.Zero, decimal.Zero
		highConfidence := 0
		for _, a := range analyses {
			positive = positive.Add(a.Sentiment.Positive)
			negative = negative.Add(a.Sentiment.Negative)
			confidence = confidence.Add(a.Signal.Confidence)
			if a.Signal.Confidence.GreaterThan(highConfidenceLevel) {
				highConfidence++
			}
		}

		fmt.Fprintln(w, "📈 Average Sentiment:")
		fmt.Fprintf(w, "  Positive: %s%%\n", percent(positive.Div(n), 1))
		fmt.Fprintf(w, "  Negative: %s%%\n", percent(negative.Div(n), 1))
		fmt.Fprintf(w, "  Average Signal Confidence: %s%%\n", percent(confidence.Div(n), 1))
		fmt.Fprintf(w, "  High Confidence Signals (>80%%): %d\n\n", highConfidence)

		fmt.Fprintln(w, "🎯 Signals:")
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Symbol", "Signal", "Confidence", "Strength", "Direction", "Source", "Title"})
		table.SetAutoWrapText(false)
		for _, a := range analyses {
			table.Append([]string{
				a.Signal.Symbol,
				signalEmoji(a.Type) + " " + a.Type.String(),
				percent(a.Signal.Confidence, 1) + "%",
				strconv.Itoa(a.Strength),
				a.Direction.String(),
				a.Article.Source,
				truncate(a.Article.Title, 48),
			})
		}
		table.Render()
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
}

// Dashboard is CreateDashboard rendered to a string
func Dashboard(analyses []news.Analysis) string {
	var b strings.Builder
	CreateDashboard(&b, analyses)
	return b.String()
}

// LagTable writes one row per lag with its coefficient
func LagTable(w io.Writer, curve []types.LagCorrelation) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Lag (h)", "Coefficient"})
	for _, point := range curve {
		table.Append([]string{strconv.Itoa(point.LagHours), point.Coefficient.StringFixed(4)})
	}
	table.Render()
}

// ProgressBar renders "[=====     ] 50%". A zero total renders empty at 0%.
func ProgressBar(current, total, width int) string {
	if total <= 0 {
		return "[          ] 0%"
	}
	if current < 0 {
		current = 0
	}
	if width < 0 {
		width = 0
	}

	ratio := float64(current) / float64(total)
	percentage := int(ratio * 100)
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}

	return fmt.Sprintf("[%s%s] %d%%",
		strings.Repeat("=", filled),
		strings.Repeat(" ", width-filled),
		percentage,
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
