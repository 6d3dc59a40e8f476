// Package pricefeed generates the synthetic price series that stands in for
// a market feed in the sandbox.
//
// Each generated point perturbs a fixed base price by a uniformly random
// symmetric delta, scaled per timeframe. Generate draws fresh randomness on
// every call and replaces the stored series — it is deliberately NOT
// idempotent; callers needing a stable series must cache the result.
//
// All prices use shopspring/decimal — never float64 for money. Randomness
// happens in float64 and is immediately converted to decimal.
package pricefeed

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexapoint/sandbox-engine/internal/model"
)

// DefaultTimeframe is the sampling policy used when the requested timeframe
// is unrecognized. Falling back is defined behavior, not an error.
const DefaultTimeframe = "24H"

// basePrice anchors the random walk.
var basePrice = decimal.NewFromInt(100)

// policy describes one timeframe's sampling: how many points, how far apart,
// and how wide the symmetric random delta is.
type policy struct {
	points  int
	spacing time.Duration
	scale   float64 // delta drawn uniformly from ±scale
}

var policies = map[string]policy{
	"1H":  {points: 60, spacing: time.Minute, scale: 1},
	"24H": {points: 24, spacing: time.Hour, scale: 5},
	"7D":  {points: 168, spacing: time.Hour, scale: 5},
}

// Resolve maps a requested timeframe to the canonical one that will actually
// be used, applying the default fallback. Useful as a metrics label.
func Resolve(timeframe string) string {
	if _, ok := policies[timeframe]; ok {
		return timeframe
	}
	return DefaultTimeframe
}

// Generator produces and owns the current synthetic price series.
// Safe for concurrent use.
type Generator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	series []model.PricePoint
}

// New creates a generator. Pass a seeded rng for deterministic output in
// tests; nil seeds from the clock.
func New(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Generate produces a fresh series for the timeframe and replaces the stored
// one. Timestamps are back-dated from now so the last point is the most
// recent. Repeated calls with the same timeframe yield different series.
func (g *Generator) Generate(timeframe string) []model.PricePoint {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generateLocked(timeframe)
}

// Latest returns the last point of the most recently generated series,
// lazily generating a default series on first access.
func (g *Generator) Latest() model.PricePoint {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.series) == 0 {
		g.generateLocked(DefaultTimeframe)
	}
	return g.series[len(g.series)-1]
}

func (g *Generator) generateLocked(timeframe string) []model.PricePoint {
	p, ok := policies[timeframe]
	if !ok {
		p = policies[DefaultTimeframe]
	}

	now := time.Now().UTC()
	series := make([]model.PricePoint, p.points)
	for i := range series {
		delta := (g.rng.Float64()*2 - 1) * p.scale
		series[i] = model.PricePoint{
			ID:        int64(i + 1),
			Price:     basePrice.Add(decimal.NewFromFloat(delta)).Round(2),
			Timestamp: now.Add(-time.Duration(p.points-1-i) * p.spacing),
		}
	}
	g.series = series

	// Return a copy to keep the stored series immutable from outside.
	out := make([]model.PricePoint, len(series))
	copy(out, series)
	return out
}
