// Package risk enforces optional exposure limits at the order-submission
// boundary. The ledger itself is a pure fact store and accepts any
// well-shaped order; if a deployment wants position or notional caps, this
// is where they live. A nil *Limiter disables all checks, which is the
// sandbox's reference behavior.
package risk

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/nexapoint/sandbox-engine/internal/model"
)

var (
	// ErrPositionLimit is returned when an order would push a symbol's
	// absolute net position beyond the per-symbol maximum.
	ErrPositionLimit = errors.New("risk: per-symbol position limit exceeded")

	// ErrNotionalLimit is returned when a single order's notional value
	// (amount × price) exceeds the per-order maximum.
	ErrNotionalLimit = errors.New("risk: order notional limit exceeded")
)

// Limiter caps exposure per order and per symbol. A zero value for either
// limit disables that check.
type Limiter struct {
	// MaxPosition is the maximum absolute net quantity held in any symbol.
	MaxPosition decimal.Decimal

	// MaxNotional is the maximum amount × price of a single order.
	MaxNotional decimal.Decimal
}

// NewLimiter creates a limiter with the given caps.
func NewLimiter(maxPosition, maxNotional decimal.Decimal) *Limiter {
	return &Limiter{MaxPosition: maxPosition, MaxNotional: maxNotional}
}

// Check validates a draft against the current portfolio snapshot.
// Returns nil if the order is within limits. Safe to call on a nil limiter.
func (l *Limiter) Check(draft model.OrderDraft, snapshot model.PortfolioSnapshot) error {
	if l == nil {
		return nil
	}

	if l.MaxNotional.IsPositive() {
		if draft.Amount.Mul(draft.Price).GreaterThan(l.MaxNotional) {
			return ErrNotionalLimit
		}
	}

	if l.MaxPosition.IsPositive() {
		delta := draft.Amount
		if draft.Type == model.Sell {
			delta = delta.Neg()
		}
		next := snapshot.Positions[draft.Symbol].Add(delta)
		if next.Abs().GreaterThan(l.MaxPosition) {
			return ErrPositionLimit
		}
	}

	return nil
}
