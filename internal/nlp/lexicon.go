package nlp

// Lexicon is the keyword table driving the keyword scorer. Matching is by
// lowercase substring, so a keyword inside a longer word still counts.
type Lexicon struct {
	Positive []string
	Negative []string
}

// DefaultLexicon returns the compiled-in market keyword table
func DefaultLexicon() Lexicon {
	return Lexicon{
		Positive: loadPositiveKeywords(),
		Negative: loadNegativeKeywords(),
	}
}

func loadPositiveKeywords() []string {
	return []string{
		"surge", "surges", "bull", "bullish", "gain", "gains", "profit",
		"profits", "high", "highs", "up", "rise", "rises", "growth",
		"increase", "increases", "positive", "optimistic", "success",
		"successful", "strong", "stronger", "breakthrough", "record",
		"adoption", "unprecedented", "excellent", "great", "good",
	}
}

func loadNegativeKeywords() []string {
	return []string{
		"crash", "crashes", "bear", "bearish", "loss", "losses", "down",
		"fall", "falls", "decline", "declines", "negative", "pessimistic",
		"failure", "weak", "weaker", "concern", "concerns", "worry", "worries",
		"correction", "downturn", "plunge", "plunges", "drop", "drops",
		"risk", "risks", "fear", "fears", "warning", "warnings",
	}
}
