// Package sandbox provides the HTTP handlers for the token-trading sandbox:
// synthetic price feed, order submission, portfolio valuation, and the
// waitlist.
//
// All monetary values use shopspring/decimal — never float64 for money.
package sandbox

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/nexapoint/sandbox-engine/internal/metrics"
	"github.com/nexapoint/sandbox-engine/internal/model"
	"github.com/nexapoint/sandbox-engine/internal/portfolio"
	"github.com/nexapoint/sandbox-engine/internal/pricefeed"
	"github.com/nexapoint/sandbox-engine/internal/risk"
	"github.com/nexapoint/sandbox-engine/internal/store"
)

// emailRegex is a shape check only — one non-empty local part, one @, one
// dotted domain. Deliverability is out of scope.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Service handles sandbox operations. The ledger's append path is serialized
// by the store; handlers themselves hold no state beyond their dependencies.
type Service struct {
	store   store.Store
	feed    *pricefeed.Generator
	limiter *risk.Limiter // nil → no submission-boundary policy
	wsHub   *WSHub        // optional hub for real-time broadcasts
}

// NewService creates a new sandbox service. Pass nil for limiter to accept
// every well-shaped order, and nil for hub if broadcasting is not needed.
func NewService(st store.Store, feed *pricefeed.Generator, limiter *risk.Limiter, hub *WSHub) *Service {
	return &Service{
		store:   st,
		feed:    feed,
		limiter: limiter,
		wsHub:   hub,
	}
}

// --- Request/Response types ---

// WaitlistRequest is the JSON body for POST /waitlist.
type WaitlistRequest struct {
	Email string `json:"email"`
}

// WaitlistResponse reports whether the email was newly added.
type WaitlistResponse struct {
	Added bool `json:"added"`
}

// --- HTTP Handlers ---

// GetLatestPrice handles GET /api/v1/price/latest
func (s *Service) GetLatestPrice(w http.ResponseWriter, r *http.Request) {
	point := s.feed.Latest()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(point)
}

// GetPriceHistory handles GET /api/v1/price/history?timeframe=24H
// Generates a fresh series on every call; unrecognized timeframes fall back
// to the default policy.
func (s *Service) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	timeframe := r.URL.Query().Get("timeframe")
	series := s.feed.Generate(timeframe)

	metrics.PriceSeriesGenerated.WithLabelValues(pricefeed.Resolve(timeframe)).Inc()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(series)
}

// CreateOrder handles POST /api/v1/orders
// Validates the draft, applies the optional risk policy, and appends to the
// ledger. A rejected draft leaves the ledger untouched.
func (s *Service) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var draft model.OrderDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	if err := draft.Validate(); err != nil {
		metrics.OrderRejections.WithLabelValues("validation").Inc()
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Submission-boundary policy, if configured. The ledger itself never
	// checks balances or positions.
	if s.limiter != nil {
		orders, err := s.store.Orders(ctx)
		if err != nil {
			writeError(w, "failed to load order history", http.StatusInternalServerError)
			return
		}
		snapshot := portfolio.Valuate(orders, s.feed.Latest().Price)
		if err := s.limiter.Check(draft, snapshot); err != nil {
			metrics.OrderRejections.WithLabelValues("risk").Inc()
			writeError(w, err.Error(), http.StatusConflict)
			return
		}
	}

	order, err := s.store.AppendOrder(ctx, draft)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			metrics.OrderRejections.WithLabelValues("validation").Inc()
			writeError(w, verr.Error(), http.StatusBadRequest)
			return
		}
		writeError(w, "failed to record order", http.StatusInternalServerError)
		return
	}

	metrics.OrdersTotal.WithLabelValues(string(order.Type)).Inc()

	slog.Info("order appended",
		"id", order.ID,
		"type", order.Type,
		"symbol", order.Symbol,
		"amount", order.Amount.String(),
		"price", order.Price.String(),
	)

	// Broadcast the fill with the refreshed portfolio value.
	if s.wsHub != nil {
		orders, err := s.store.Orders(ctx)
		if err == nil {
			snapshot := portfolio.Valuate(orders, s.feed.Latest().Price)
			s.wsHub.Broadcast(WSMessage{
				Type:           "order_created",
				Order:          order,
				PortfolioValue: snapshot.Value.String(),
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(order)
}

// GetOrders handles GET /api/v1/orders
// Returns the full history in insertion order, oldest first.
func (s *Service) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.Orders(r.Context())
	if err != nil {
		writeError(w, "failed to list orders", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

// GetPortfolio handles GET /api/v1/portfolio
// Recomputes the snapshot from the full order history and the latest price.
func (s *Service) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.Orders(r.Context())
	if err != nil {
		writeError(w, "failed to load order history", http.StatusInternalServerError)
		return
	}

	snapshot := portfolio.Valuate(orders, s.feed.Latest().Price)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

// AddToWaitlist handles POST /api/v1/waitlist
// Duplicate emails are reported via added=false, not an error.
func (s *Service) AddToWaitlist(w http.ResponseWriter, r *http.Request) {
	var req WaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if !emailRegex.MatchString(req.Email) {
		writeError(w, "invalid email address", http.StatusBadRequest)
		return
	}

	added, err := s.store.AddWaitlistEntry(r.Context(), req.Email)
	if err != nil {
		writeError(w, "failed to register email", http.StatusInternalServerError)
		return
	}

	if added {
		slog.Info("waitlist signup", "email", req.Email)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(WaitlistResponse{Added: added})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
