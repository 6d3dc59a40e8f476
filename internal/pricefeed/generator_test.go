package pricefeed_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexapoint/sandbox-engine/internal/pricefeed"
)

func seeded(seed int64) *pricefeed.Generator {
	return pricefeed.New(rand.New(rand.NewSource(seed)))
}

func TestGenerate_PointCounts(t *testing.T) {
	cases := []struct {
		timeframe string
		want      int
	}{
		{"1H", 60},
		{"24H", 24},
		{"7D", 168},
		{"badvalue", 24}, // unknown timeframe falls back to 24H
		{"", 24},
	}

	g := seeded(1)
	for _, tc := range cases {
		series := g.Generate(tc.timeframe)
		if len(series) != tc.want {
			t.Errorf("Generate(%q): expected %d points, got %d", tc.timeframe, tc.want, len(series))
		}
	}
}

func TestGenerate_SpacingAndOrdering(t *testing.T) {
	cases := []struct {
		timeframe string
		spacing   time.Duration
	}{
		{"1H", time.Minute},
		{"24H", time.Hour},
		{"7D", time.Hour},
		{"badvalue", time.Hour},
	}

	g := seeded(2)
	for _, tc := range cases {
		series := g.Generate(tc.timeframe)
		for i := 1; i < len(series); i++ {
			gap := series[i].Timestamp.Sub(series[i-1].Timestamp)
			if gap != tc.spacing {
				t.Fatalf("Generate(%q): expected %v spacing at index %d, got %v",
					tc.timeframe, tc.spacing, i, gap)
			}
		}
		last := series[len(series)-1].Timestamp
		if time.Since(last) > time.Minute {
			t.Errorf("Generate(%q): last point should be near now, got %v", tc.timeframe, last)
		}
	}
}

func TestGenerate_SequentialIDs(t *testing.T) {
	g := seeded(3)
	series := g.Generate("1H")
	for i, p := range series {
		if p.ID != int64(i+1) {
			t.Fatalf("expected id %d at index %d, got %d", i+1, i, p.ID)
		}
	}
}

func TestGenerate_PositivePrices(t *testing.T) {
	g := seeded(4)
	for _, tf := range []string{"1H", "24H", "7D"} {
		for _, p := range g.Generate(tf) {
			if p.Price.LessThanOrEqual(decimal.Zero) {
				t.Fatalf("Generate(%q): non-positive price %s", tf, p.Price)
			}
		}
	}
}

func TestGenerate_DeterministicUnderSeed(t *testing.T) {
	a := seeded(42).Generate("24H")
	b := seeded(42).Generate("24H")

	for i := range a {
		if !a[i].Price.Equal(b[i].Price) {
			t.Fatalf("same seed should yield same prices, diverged at %d: %s vs %s",
				i, a[i].Price, b[i].Price)
		}
	}
}

func TestGenerate_FreshRandomnessPerCall(t *testing.T) {
	g := seeded(5)
	a := g.Generate("24H")
	b := g.Generate("24H")

	same := true
	for i := range a {
		if !a[i].Price.Equal(b[i].Price) {
			same = false
			break
		}
	}
	if same {
		t.Error("repeated Generate calls should draw fresh randomness")
	}
}

func TestLatest_LazyDefault(t *testing.T) {
	g := seeded(6)

	// No series generated yet: Latest must lazily produce a 24H series.
	p := g.Latest()
	if p.ID != 24 {
		t.Errorf("expected lazy 24H series (last id 24), got id %d", p.ID)
	}

	// Latest is stable until the next Generate.
	if !g.Latest().Price.Equal(p.Price) {
		t.Error("Latest should not regenerate the series")
	}
}

func TestLatest_TracksCurrentSeries(t *testing.T) {
	g := seeded(7)
	series := g.Generate("1H")

	p := g.Latest()
	last := series[len(series)-1]
	if p.ID != last.ID || !p.Price.Equal(last.Price) {
		t.Errorf("Latest should be the last generated point: got %d/%s, want %d/%s",
			p.ID, p.Price, last.ID, last.Price)
	}
}

func TestResolve(t *testing.T) {
	if got := pricefeed.Resolve("1H"); got != "1H" {
		t.Errorf("Resolve(1H) = %s", got)
	}
	if got := pricefeed.Resolve("nonsense"); got != pricefeed.DefaultTimeframe {
		t.Errorf("Resolve(nonsense) = %s, want default", got)
	}
}
