// Package store holds the order ledger and the waitlist registry.
// Implementations include in-memory (the default — the sandbox is
// process-lifetime only), PostgreSQL, and a Redis read-through cache layer.
package store

import (
	"context"

	"github.com/nexapoint/sandbox-engine/internal/model"
)

// Store is the persistence interface for the order ledger and the waitlist.
//
// The ledger is append-only: orders are validated, assigned a strictly
// increasing integer id (starting at 1, never reused) and a server-side
// timestamp, and never edited or removed afterwards. A draft that fails
// validation leaves the ledger untouched and consumes no id.
type Store interface {
	// AppendOrder validates the draft and appends it to the ledger.
	// Returns *model.ValidationError for malformed drafts.
	AppendOrder(ctx context.Context, draft model.OrderDraft) (*model.Order, error)

	// Orders returns the full order history in insertion order, oldest first.
	Orders(ctx context.Context) ([]model.Order, error)

	// AddWaitlistEntry registers an email. Returns false if it was already
	// present (idempotent rejection on duplicate), true on first insertion.
	AddWaitlistEntry(ctx context.Context, email string) (bool, error)

	// WaitlistEntries returns all registered entries in insertion order.
	WaitlistEntries(ctx context.Context) ([]model.WaitlistEntry, error)
}
