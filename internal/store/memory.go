package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nexapoint/sandbox-engine/internal/model"
)

// MemoryStore implements Store with in-memory slices. This is the sandbox's
// default store: state lives for the process lifetime only. The mutex
// serializes the append path so ids stay strictly increasing under
// concurrent requests.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	orders   []model.Order
	waitlist []model.WaitlistEntry
	emails   map[string]bool
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		emails: make(map[string]bool),
	}
}

func (s *MemoryStore) AppendOrder(_ context.Context, draft model.OrderDraft) (*model.Order, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order := model.Order{
		ID:        s.nextID,
		Type:      draft.Type,
		Amount:    draft.Amount,
		Price:     draft.Price,
		Symbol:    draft.Symbol,
		Timestamp: time.Now().UTC(),
	}
	s.nextID++
	s.orders = append(s.orders, order)

	return &order, nil
}

func (s *MemoryStore) Orders(_ context.Context) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return a copy so callers cannot mutate the ledger.
	orders := make([]model.Order, len(s.orders))
	copy(orders, s.orders)
	return orders, nil
}

func (s *MemoryStore) AddWaitlistEntry(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emails[email] {
		return false, nil
	}
	s.emails[email] = true
	s.waitlist = append(s.waitlist, model.WaitlistEntry{
		ID:        uuid.New().String(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	})
	return true, nil
}

func (s *MemoryStore) WaitlistEntries(_ context.Context) ([]model.WaitlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]model.WaitlistEntry, len(s.waitlist))
	copy(entries, s.waitlist)
	return entries, nil
}
