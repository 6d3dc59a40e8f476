// Package portfolio derives balances, positions, and valuation from the
// order ledger. Valuation is a pure single pass over the full history —
// recompute-from-source, no incremental cache — so for fixed inputs the
// output is exactly reproducible.
//
// All monetary values use shopspring/decimal — never float64 for money.
package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/nexapoint/sandbox-engine/internal/model"
)

// InitialBalance is the fixed cash endowment every session starts from.
var InitialBalance = decimal.NewFromInt(1000)

// Valuate computes a snapshot from the order history, marking every symbol
// at the single latest price quote. This is the reference behavior; use
// ValuateQuoted for per-symbol marks.
//
// The result is permutation-invariant: all operations are commutative sums.
// Negative positions are not rejected here — any oversell policy belongs to
// the order-submission boundary.
func Valuate(orders []model.Order, latestPrice decimal.Decimal) model.PortfolioSnapshot {
	return ValuateQuoted(orders, nil, latestPrice)
}

// ValuateQuoted computes a snapshot marking each symbol at its quoted price,
// falling back to fallbackPrice for symbols absent from quotes. With nil or
// empty quotes it is exactly Valuate.
func ValuateQuoted(orders []model.Order, quotes map[string]decimal.Decimal, fallbackPrice decimal.Decimal) model.PortfolioSnapshot {
	balance := InitialBalance
	positions := make(map[string]decimal.Decimal)
	costBasis := make(map[string]decimal.Decimal)

	for _, o := range orders {
		notional := o.Amount.Mul(o.Price)
		switch o.Type {
		case model.Buy:
			balance = balance.Sub(notional)
			positions[o.Symbol] = positions[o.Symbol].Add(o.Amount)
			costBasis[o.Symbol] = costBasis[o.Symbol].Add(notional)
		case model.Sell:
			balance = balance.Add(notional)
			positions[o.Symbol] = positions[o.Symbol].Sub(o.Amount)
			costBasis[o.Symbol] = costBasis[o.Symbol].Sub(notional)
		}
	}

	tokensValue := decimal.Zero
	for symbol, qty := range positions {
		mark, ok := quotes[symbol]
		if !ok {
			mark = fallbackPrice
		}
		tokensValue = tokensValue.Add(qty.Mul(mark))
	}

	return model.PortfolioSnapshot{
		Balance:     balance,
		Positions:   positions,
		CostBasis:   costBasis,
		TokensValue: tokensValue,
		Value:       balance.Add(tokensValue),
	}
}
