package prices

import (
	"context"
	"sort"
	"sync"
	"time"

	"sentiment-trading/internal/interfaces"
	"sentiment-trading/internal/types"
)

// DefaultCacheSize bounds the points kept per symbol: 30 days of hourly data
const DefaultCacheSize = 30 * 24

// Cached serves repeated History calls from per-symbol buffers and only
// asks the wrapped source when the requested range is not yet covered
type Cached struct {
	source  interfaces.PriceSource
	maxSize int

	mu      sync.RWMutex
	buffers map[string]*pointBuffer
}

// pointBuffer holds a symbol's points sorted by timestamp together with the
// range they were fetched for
type pointBuffer struct {
	points   []types.PricePoint
	from, to int64
}

var _ interfaces.PriceSource = (*Cached)(nil)

// NewCached wraps source. maxSize <= 0 uses DefaultCacheSize.
func NewCached(source interfaces.PriceSource, maxSize int) *Cached {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &Cached{
		source:  source,
		maxSize: maxSize,
		buffers: make(map[string]*pointBuffer),
	}
}

func (c *Cached) History(ctx context.Context, symbol string, from, to time.Time) ([]types.PricePoint, error) {
	lo, hi := from.Unix(), to.Unix()

	if points, ok := c.lookup(symbol, lo, hi); ok {
		return points, nil
	}

	points, err := c.source.History(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}

	c.store(symbol, lo, hi, points)
	return points, nil
}

func (c *Cached) lookup(symbol string, lo, hi int64) ([]types.PricePoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	buf, ok := c.buffers[symbol]
	if !ok || lo < buf.from || hi > buf.to {
		return nil, false
	}

	start := sort.Search(len(buf.points), func(i int) bool { return buf.points[i].Timestamp >= lo })
	end := sort.Search(len(buf.points), func(i int) bool { return buf.points[i].Timestamp > hi })

	out := make([]types.PricePoint, end-start)
	copy(out, buf.points[start:end])
	return out, true
}

// store merges points into the symbol's buffer. Ranges that do not overlap
// the cached one replace it.
func (c *Cached) store(symbol string, lo, hi int64, points []types.PricePoint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	buf, ok := c.buffers[symbol]
	if !ok || hi < buf.from || lo > buf.to {
		buf = &pointBuffer{from: lo, to: hi}
		c.buffers[symbol] = buf
	} else {
		buf.from = min(buf.from, lo)
		buf.to = max(buf.to, hi)
	}

	byTime := make(map[int64]types.PricePoint, len(buf.points)+len(points))
	for _, p := range buf.points {
		byTime[p.Timestamp] = p
	}
	for _, p := range points {
		byTime[p.Timestamp] = p
	}

	merged := make([]types.PricePoint, 0, len(byTime))
	for _, p := range byTime {
		merged = append(merged, p)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Timestamp < merged[j].Timestamp })

	// Drop the oldest points past capacity
	if len(merged) > c.maxSize {
		merged = merged[len(merged)-c.maxSize:]
		buf.from = merged[0].Timestamp
	}
	buf.points = merged
}

// Clear drops every buffer
func (c *Cached) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.buffers = make(map[string]*pointBuffer)
}
