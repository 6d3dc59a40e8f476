package portfolio_test

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nexapoint/sandbox-engine/internal/model"
	"github.com/nexapoint/sandbox-engine/internal/portfolio"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func buy(amount, price float64, symbol string) model.Order {
	return model.Order{Type: model.Buy, Amount: d(amount), Price: d(price), Symbol: symbol}
}

func sell(amount, price float64, symbol string) model.Order {
	return model.Order{Type: model.Sell, Amount: d(amount), Price: d(price), Symbol: symbol}
}

func TestValuate_EmptyLedger(t *testing.T) {
	snap := portfolio.Valuate(nil, d(110))

	if !snap.Balance.Equal(d(1000)) {
		t.Errorf("expected balance 1000, got %s", snap.Balance)
	}
	if !snap.Value.Equal(d(1000)) {
		t.Errorf("expected value 1000, got %s", snap.Value)
	}
	if len(snap.Positions) != 0 {
		t.Errorf("expected empty positions, got %v", snap.Positions)
	}
	if !snap.TokensValue.IsZero() {
		t.Errorf("expected zero tokens value, got %s", snap.TokensValue)
	}
}

func TestValuate_BuySellScenario(t *testing.T) {
	orders := []model.Order{
		buy(10, 100, "NXP"),
		sell(4, 120, "NXP"),
	}

	snap := portfolio.Valuate(orders, d(110))

	if !snap.Positions["NXP"].Equal(d(6)) {
		t.Errorf("expected position 6, got %s", snap.Positions["NXP"])
	}
	// 1000 - 10*100 + 4*120 = 480
	if !snap.Balance.Equal(d(480)) {
		t.Errorf("expected balance 480, got %s", snap.Balance)
	}
	// 480 + 6*110 = 1140
	if !snap.Value.Equal(d(1140)) {
		t.Errorf("expected value 1140, got %s", snap.Value)
	}
	// 10*100 - 4*120 = 520
	if !snap.CostBasis["NXP"].Equal(d(520)) {
		t.Errorf("expected cost basis 520, got %s", snap.CostBasis["NXP"])
	}
}

func TestValuate_PermutationInvariant(t *testing.T) {
	orders := []model.Order{
		buy(10, 100, "NXP"),
		sell(4, 120, "NXP"),
		buy(3, 95, "QTM"),
		sell(1, 105, "QTM"),
		buy(7, 101, "NXP"),
	}

	want := portfolio.Valuate(orders, d(110))

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]model.Order, len(orders))
		copy(shuffled, orders)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got := portfolio.Valuate(shuffled, d(110))

		if !got.Balance.Equal(want.Balance) || !got.Value.Equal(want.Value) {
			t.Fatalf("permutation changed totals: balance %s vs %s, value %s vs %s",
				got.Balance, want.Balance, got.Value, want.Value)
		}
		for sym, qty := range want.Positions {
			if !got.Positions[sym].Equal(qty) {
				t.Fatalf("permutation changed position[%s]: %s vs %s", sym, got.Positions[sym], qty)
			}
		}
		for sym, c := range want.CostBasis {
			if !got.CostBasis[sym].Equal(c) {
				t.Fatalf("permutation changed costBasis[%s]: %s vs %s", sym, got.CostBasis[sym], c)
			}
		}
	}
}

func TestValuate_RoundTripFlattensPosition(t *testing.T) {
	orders := []model.Order{
		buy(15, 90, "NXP"),
		sell(15, 130, "NXP"),
	}

	snap := portfolio.Valuate(orders, d(110))

	if !snap.Positions["NXP"].IsZero() {
		t.Errorf("buy then sell of the same amount should net to 0, got %s", snap.Positions["NXP"])
	}
	// Balance reflects the price difference: 1000 + 15*(130-90) = 1600.
	if !snap.Balance.Equal(d(1600)) {
		t.Errorf("expected balance 1600, got %s", snap.Balance)
	}
	if !snap.Value.Equal(snap.Balance) {
		t.Errorf("flat position: value should equal balance, got %s vs %s", snap.Value, snap.Balance)
	}
}

func TestValuate_NegativePositionNotRejected(t *testing.T) {
	// The valuator is a pure aggregator: oversold positions pass through.
	snap := portfolio.Valuate([]model.Order{sell(5, 100, "NXP")}, d(110))

	if !snap.Positions["NXP"].Equal(d(-5)) {
		t.Errorf("expected position -5, got %s", snap.Positions["NXP"])
	}
	if !snap.Balance.Equal(d(1500)) {
		t.Errorf("expected balance 1500, got %s", snap.Balance)
	}
	// 1500 + (-5)*110 = 950
	if !snap.Value.Equal(d(950)) {
		t.Errorf("expected value 950, got %s", snap.Value)
	}
}

func TestValuateQuoted_EmptyQuotesMatchesValuate(t *testing.T) {
	orders := []model.Order{
		buy(10, 100, "NXP"),
		buy(2, 50, "QTM"),
		sell(4, 120, "NXP"),
	}

	ref := portfolio.Valuate(orders, d(110))
	quoted := portfolio.ValuateQuoted(orders, nil, d(110))

	if !ref.Value.Equal(quoted.Value) || !ref.Balance.Equal(quoted.Balance) {
		t.Errorf("nil quotes should reproduce single-price valuation: %s/%s vs %s/%s",
			quoted.Balance, quoted.Value, ref.Balance, ref.Value)
	}
}

func TestValuateQuoted_PerSymbolMarks(t *testing.T) {
	orders := []model.Order{
		buy(10, 100, "NXP"),
		buy(2, 50, "QTM"),
	}

	quotes := map[string]decimal.Decimal{"NXP": d(110)}
	snap := portfolio.ValuateQuoted(orders, quotes, d(40)) // QTM marks at fallback

	// balance = 1000 - 1000 - 100 = -100; tokens = 10*110 + 2*40 = 1180
	if !snap.TokensValue.Equal(d(1180)) {
		t.Errorf("expected tokens value 1180, got %s", snap.TokensValue)
	}
	if !snap.Value.Equal(d(1080)) {
		t.Errorf("expected value 1080, got %s", snap.Value)
	}
}
