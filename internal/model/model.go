// Package model defines the core domain types shared across the sandbox engine.
// All monetary values use shopspring/decimal — never float64 for money.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderType is the direction of a trade. Closed enumeration: Buy or Sell.
type OrderType string

const (
	Buy  OrderType = "buy"
	Sell OrderType = "sell"
)

// Order is an immutable record of a submitted trade.
// Once appended to the ledger it is never modified or deleted.
type Order struct {
	ID        int64           `json:"id" db:"id"`
	Type      OrderType       `json:"type" db:"type"`
	Amount    decimal.Decimal `json:"amount" db:"amount"` // quantity of the symbol traded
	Price     decimal.Decimal `json:"price" db:"price"`   // execution price at submission
	Symbol    string          `json:"symbol" db:"symbol"`
	Timestamp time.Time       `json:"timestamp" db:"created_at"` // set server-side
}

// OrderDraft is the caller-supplied part of an order, before the ledger
// assigns an id and timestamp.
type OrderDraft struct {
	Type   OrderType       `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Price  decimal.Decimal `json:"price"`
	Symbol string          `json:"symbol"`
}

// ValidationError reports a malformed order draft. The ledger rejects the
// draft without appending anything; the HTTP layer maps it to 400.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order draft: %s %s", e.Field, e.Reason)
}

// Validate checks the draft's shape. It enforces no business rules
// (balance, holdings) — those belong to the submission boundary.
func (d OrderDraft) Validate() error {
	if d.Type != Buy && d.Type != Sell {
		return &ValidationError{Field: "type", Reason: "must be buy or sell"}
	}
	if !d.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if !d.Price.IsPositive() {
		return &ValidationError{Field: "price", Reason: "must be positive"}
	}
	if d.Symbol == "" {
		return &ValidationError{Field: "symbol", Reason: "must be non-empty"}
	}
	return nil
}

// PricePoint is one sample of the synthetic price series.
// IDs are sequence numbers within a generated series, starting at 1.
type PricePoint struct {
	ID        int64           `json:"id"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

// PortfolioSnapshot is the derived state of the sandbox portfolio. It is
// recomputed from the full order history on every valuation and never stored.
type PortfolioSnapshot struct {
	Balance     decimal.Decimal            `json:"balance"`      // cash, starts at the initial endowment
	Positions   map[string]decimal.Decimal `json:"positions"`    // symbol → signed net quantity
	CostBasis   map[string]decimal.Decimal `json:"cost_basis"`   // symbol → signed net cost
	TokensValue decimal.Decimal            `json:"tokens_value"` // Σ position × mark price
	Value       decimal.Decimal            `json:"value"`        // balance + tokens value
}

// WaitlistEntry is a subscriber email. Emails are unique within the registry.
type WaitlistEntry struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
