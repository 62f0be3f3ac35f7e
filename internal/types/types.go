package types

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Article is a single piece of news text handed to the analysis core.
type Article struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Source    string `json:"source"`
	Timestamp int64  `json:"timestamp"`
	URL       string `json:"url,omitempty"`
}

// SentimentScore is a three-way polarity distribution. Components are meant
// to sum to 1 but callers constructing one directly are not checked.
type SentimentScore struct {
	Positive decimal.Decimal `json:"positive"`
	Negative decimal.Decimal `json:"negative"`
	Neutral  decimal.Decimal `json:"neutral"`
}

func NewSentimentScore(positive, negative, neutral decimal.Decimal) SentimentScore {
	return SentimentScore{Positive: positive, Negative: negative, Neutral: neutral}
}

// Sum returns positive + negative + neutral.
func (s SentimentScore) Sum() decimal.Decimal {
	return s.Positive.Add(s.Negative).Add(s.Neutral)
}

// Net returns positive - negative.
func (s SentimentScore) Net() decimal.Decimal {
	return s.Positive.Sub(s.Negative)
}

type Signal struct {
	Symbol     string          `json:"symbol"`
	Sentiment  SentimentScore  `json:"sentiment"`
	Confidence decimal.Decimal `json:"confidence"`
}

type SignalType int

const (
	Hold SignalType = iota
	Buy
	Sell
)

func (t SignalType) String() string {
	switch t {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case Hold:
		return "HOLD"
	default:
		return fmt.Sprintf("SignalType(%d)", int(t))
	}
}

func (t SignalType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *SignalType) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "BUY":
		*t = Buy
	case "SELL":
		*t = Sell
	case "HOLD":
		*t = Hold
	default:
		return fmt.Errorf("unknown signal type %q", string(b))
	}
	return nil
}

type PricePoint struct {
	Timestamp int64            `json:"timestamp"`
	Price     decimal.Decimal  `json:"price"`
	Volume    *decimal.Decimal `json:"volume,omitempty"`
}

// TimedSentiment is one sample of a sentiment time series.
type TimedSentiment struct {
	Timestamp int64          `json:"timestamp"`
	Score     SentimentScore `json:"score"`
}

type LagCorrelation struct {
	LagHours    int             `json:"lag_hours"`
	Coefficient decimal.Decimal `json:"coefficient"`
}

type CorrelationData struct {
	CorrelationCoefficient decimal.Decimal `json:"correlation_coefficient"`
	LagHours               int             `json:"lag_hours"`
	SampleSize             int             `json:"sample_size"`
}

type PriceDirection int

const (
	Neutral PriceDirection = iota
	Up
	Down
)

func (d PriceDirection) String() string {
	switch d {
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Neutral:
		return "NEUTRAL"
	default:
		return fmt.Sprintf("PriceDirection(%d)", int(d))
	}
}

func (d PriceDirection) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *PriceDirection) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "UP":
		*d = Up
	case "DOWN":
		*d = Down
	case "NEUTRAL":
		*d = Neutral
	default:
		return fmt.Errorf("unknown price direction %q", string(b))
	}
	return nil
}
