package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nexapoint/sandbox-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL. Monetary values are
// stored as NUMERIC for exact decimal precision; order ids come from a
// BIGSERIAL sequence, which preserves the strictly-increasing invariant
// across processes.
//
// Schema:
//
//	CREATE TABLE orders (
//	    id         BIGSERIAL PRIMARY KEY,
//	    type       TEXT        NOT NULL,
//	    amount     NUMERIC     NOT NULL,
//	    price      NUMERIC     NOT NULL,
//	    symbol     TEXT        NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE TABLE waitlist (
//	    id         UUID PRIMARY KEY,
//	    email      TEXT        NOT NULL UNIQUE,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) AppendOrder(ctx context.Context, draft model.OrderDraft) (*model.Order, error) {
	// Validate before touching the database: a bad draft must not consume
	// a sequence value.
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	order := model.Order{
		Type:      draft.Type,
		Amount:    draft.Amount,
		Price:     draft.Price,
		Symbol:    draft.Symbol,
		Timestamp: time.Now().UTC(),
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO orders (type, amount, price, symbol, created_at)
		 VALUES ($1, $2::NUMERIC, $3::NUMERIC, $4, $5)
		 RETURNING id`,
		string(order.Type), order.Amount.String(), order.Price.String(),
		order.Symbol, order.Timestamp,
	).Scan(&order.ID)
	if err != nil {
		return nil, fmt.Errorf("append order: %w", err)
	}

	return &order, nil
}

func (s *PostgresStore) Orders(ctx context.Context) ([]model.Order, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, type, amount::TEXT, price::TEXT, symbol, created_at
		 FROM orders ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		var typ, amountS, priceS string
		if err := rows.Scan(&o.ID, &typ, &amountS, &priceS, &o.Symbol, &o.Timestamp); err != nil {
			return nil, err
		}
		o.Type = model.OrderType(typ)
		o.Amount, _ = decimal.NewFromString(amountS)
		o.Price, _ = decimal.NewFromString(priceS)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *PostgresStore) AddWaitlistEntry(ctx context.Context, email string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO waitlist (id, email, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO NOTHING`,
		uuid.New().String(), email, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("add waitlist entry: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) WaitlistEntries(ctx context.Context) ([]model.WaitlistEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, created_at FROM waitlist ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.WaitlistEntry
	for rows.Next() {
		var e model.WaitlistEntry
		if err := rows.Scan(&e.ID, &e.Email, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
