package nlp

import (
	"regexp"
	"strings"
)

// DefaultSymbols is the scan order used by entity extraction
var DefaultSymbols = []string{"BTC", "ETH", "USDT", "BNB", "XRP", "ADA", "DOGE", "SOL"}

var boundedPatterns = compileBounded(DefaultSymbols)

func compileBounded(symbols []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(symbols))
	for i, sym := range symbols {
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(sym) + `\b`)
	}
	return patterns
}

// ExtractEntities returns the known symbols contained in text, in scan order.
// Matching is plain case-insensitive containment, so "ethos" yields ETH.
func ExtractEntities(text string) []string {
	upper := strings.ToUpper(text)

	entities := []string{}
	for _, sym := range DefaultSymbols {
		if strings.Contains(upper, sym) {
			entities = append(entities, sym)
		}
	}
	return entities
}

// ExtractEntitiesBounded is ExtractEntities with word boundaries around each
// symbol.
func ExtractEntitiesBounded(text string) []string {
	entities := []string{}
	for i, re := range boundedPatterns {
		if re.MatchString(text) {
			entities = append(entities, DefaultSymbols[i])
		}
	}
	return entities
}

// PreprocessText trims, lowercases and collapses whitespace
func PreprocessText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
