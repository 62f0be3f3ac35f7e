package pricesobs

import (
	"context"
	"time"

	"sentiment-trading/internal/interfaces"
	"sentiment-trading/internal/logger"
	"sentiment-trading/internal/trace"
	"sentiment-trading/internal/types"
)

// observablePriceSource wraps a PriceSource with logging and tracing
type observablePriceSource struct {
	source interfaces.PriceSource
	name   string
}

// Compile-time interface check
var _ interfaces.PriceSource = (*observablePriceSource)(nil)

// Wrap wraps a price source with observability middleware
func Wrap(name string, source interfaces.PriceSource) interfaces.PriceSource {
	return &observablePriceSource{
		source: source,
		name:   name,
	}
}

// History fetches price history with observability
func (op *observablePriceSource) History(ctx context.Context, symbol string, from, to time.Time) ([]types.PricePoint, error) {
	ctx, span := trace.StartProviderSpan(ctx, "prices.History", op.name, trace.SymbolKey.String(symbol))

	logger.DebugSkip(ctx, 1, "Fetching price history",
		"source", op.name,
		"symbol", symbol,
		"from", from.UTC().Format(time.RFC3339),
		"to", to.UTC().Format(time.RFC3339),
	)

	points, err := op.source.History(ctx, symbol, from, to)
	trace.EndProviderSpan(span, len(points), err)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch price history", err, "source", op.name, "symbol", symbol)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Price history fetched", "source", op.name, "symbol", symbol, "points", len(points))
	return points, nil
}
