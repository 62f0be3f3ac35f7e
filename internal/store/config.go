package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	ModeDemo = "DEMO"
	ModeLive = "LIVE"

	PriceSourceSynthetic = "synthetic"
	PriceSourceKite      = "kite"
	PriceSourceCoinGecko = "coingecko"
)

type Config struct {
	Mode    string   `yaml:"mode"`
	Symbols []string `yaml:"symbols"`
	Sources struct {
		Mock           bool     `yaml:"mock"`
		RSS            []string `yaml:"rss"`
		Scrape         bool     `yaml:"scrape"`
		EnrichContent  bool     `yaml:"enrich_content"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
	} `yaml:"sources"`
	RateLimit struct {
		PerSecond float64 `yaml:"per_second"`
		Burst     int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	Analysis struct {
		MinConfidence        float64 `yaml:"min_confidence"`
		DefaultSymbol        string  `yaml:"default_symbol"`
		WordBoundaryEntities bool    `yaml:"word_boundary_entities"`
		MaxLagHours          int     `yaml:"max_lag_hours"`
		Volatility           float64 `yaml:"volatility"`
		Workers              int     `yaml:"workers"`
		MaxArticles          int     `yaml:"max_articles"`
	} `yaml:"analysis"`
	Cache struct {
		TTLMinutes int `yaml:"ttl_minutes"`
	} `yaml:"cache"`
	Prices struct {
		Source        string            `yaml:"source"`
		Instruments   map[string]int    `yaml:"instruments"`
		CoinIDs       map[string]string `yaml:"coin_ids"`
		BaseURL       string            `yaml:"base_url"`
		LookbackHours int               `yaml:"lookback_hours"`
	} `yaml:"prices"`
	SignalLog struct {
		RetentionDays int `yaml:"retention_days"`
	} `yaml:"signal_log"`
}

// DefaultConfig is the configuration used when no file is present: mock
// articles and synthetic prices.
func DefaultConfig() *Config {
	var c Config
	c.Sources.Mock = true
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeDemo
	}
	c.Mode = strings.ToUpper(c.Mode)
	if c.Sources.TimeoutSeconds == 0 {
		c.Sources.TimeoutSeconds = 30
	}
	if c.RateLimit.PerSecond == 0 {
		c.RateLimit.PerSecond = 1
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 1
	}
	if c.Analysis.MinConfidence == 0 {
		c.Analysis.MinConfidence = 0.7
	}
	if c.Analysis.DefaultSymbol == "" {
		c.Analysis.DefaultSymbol = "MARKET"
	}
	if c.Analysis.MaxLagHours == 0 {
		c.Analysis.MaxLagHours = 24
	}
	if c.Analysis.Workers == 0 {
		c.Analysis.Workers = 4
	}
	if c.Analysis.MaxArticles == 0 {
		c.Analysis.MaxArticles = 20
	}
	if c.Cache.TTLMinutes == 0 {
		c.Cache.TTLMinutes = 15
	}
	if c.Prices.Source == "" {
		c.Prices.Source = PriceSourceSynthetic
	}
	c.Prices.Source = strings.ToLower(c.Prices.Source)
	if c.Prices.LookbackHours == 0 {
		c.Prices.LookbackHours = 72
	}
	if c.SignalLog.RetentionDays == 0 {
		c.SignalLog.RetentionDays = 7
	}
}

func (c *Config) Validate() error {
	if c.Mode != ModeDemo && c.Mode != ModeLive {
		return fmt.Errorf("invalid mode '%s': must be 'DEMO' or 'LIVE'", c.Mode)
	}
	if !c.Sources.Mock && len(c.Sources.RSS) == 0 && !c.Sources.Scrape {
		return errors.New("sources: at least one of mock, rss or scrape must be enabled")
	}
	if c.RateLimit.PerSecond < 0 {
		return fmt.Errorf("rate_limit.per_second must not be negative, got %.2f", c.RateLimit.PerSecond)
	}
	if c.Analysis.MinConfidence < 0 || c.Analysis.MinConfidence > 1 {
		return fmt.Errorf("analysis.min_confidence must be between 0-1, got %.2f", c.Analysis.MinConfidence)
	}
	if c.Analysis.MaxLagHours < 0 {
		return fmt.Errorf("analysis.max_lag_hours must not be negative, got %d", c.Analysis.MaxLagHours)
	}
	if c.Analysis.Volatility < 0 {
		return fmt.Errorf("analysis.volatility must not be negative, got %.4f", c.Analysis.Volatility)
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must not be negative, got %d", c.Analysis.Workers)
	}
	switch c.Prices.Source {
	case PriceSourceSynthetic, PriceSourceCoinGecko:
	case PriceSourceKite:
		if len(c.Prices.Instruments) == 0 {
			return errors.New("prices.instruments cannot be empty for the kite source")
		}
	default:
		return fmt.Errorf("prices.source must be 'synthetic', 'kite' or 'coingecko', got '%s'", c.Prices.Source)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// MinConfidence is the actionability threshold
func (c *Config) MinConfidence() decimal.Decimal {
	return decimal.NewFromFloat(c.Analysis.MinConfidence)
}

// Volatility is the price target scale. Zero means derive it from history.
func (c *Config) Volatility() decimal.Decimal {
	return decimal.NewFromFloat(c.Analysis.Volatility)
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.Sources.TimeoutSeconds) * time.Second
}

func (c *Config) Lookback() time.Duration {
	return time.Duration(c.Prices.LookbackHours) * time.Hour
}
