package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/nexapoint/sandbox-engine/internal/metrics"
	"github.com/nexapoint/sandbox-engine/internal/pricefeed"
	"github.com/nexapoint/sandbox-engine/internal/risk"
	"github.com/nexapoint/sandbox-engine/internal/sandbox"
	"github.com/nexapoint/sandbox-engine/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(context.Background(), dbURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		st = store.NewPostgresStore(pool)
		slog.Info("connected to PostgreSQL")

		// Wrap with Redis read-through cache if configured.
		if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
			opt, err := redis.ParseURL(redisURL)
			if err != nil {
				slog.Error("invalid REDIS_URL", "err", err)
				os.Exit(1)
			}
			rdb := redis.NewClient(opt)
			cleanup = append(cleanup, func() { rdb.Close() })
			st = store.NewCachedStore(st, rdb, 30*time.Second)
			slog.Info("Redis cache enabled")
		}
	} else {
		slog.Info("DATABASE_URL not set, using in-memory store (session state only)")
		st = store.NewMemoryStore()
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- Optional submission-boundary limits ---
	var limiter *risk.Limiter
	maxPosition := decimalEnv("SANDBOX_MAX_POSITION")
	maxNotional := decimalEnv("SANDBOX_MAX_NOTIONAL")
	if maxPosition.IsPositive() || maxNotional.IsPositive() {
		limiter = risk.NewLimiter(maxPosition, maxNotional)
		slog.Info("risk limits enabled",
			"max_position", maxPosition.String(),
			"max_notional", maxNotional.String(),
		)
	}

	// --- Price feed ---
	feed := pricefeed.New(nil)

	// --- WebSocket hub ---
	wsHub := sandbox.NewWSHub()
	go wsHub.Run()

	// --- Sandbox service ---
	svc := sandbox.NewService(st, feed, limiter, wsHub)

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	// CORS middleware for the dashboard's cross-origin requests.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"sandbox-engine"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket endpoint for real-time fill notifications.
		r.Get("/ws", wsHub.HandleWS)

		// Synthetic price feed.
		r.Get("/price/latest", svc.GetLatestPrice)
		r.Get("/price/history", svc.GetPriceHistory)

		// Order ledger.
		r.Post("/orders", svc.CreateOrder)
		r.Get("/orders", svc.GetOrders)

		// Derived portfolio.
		r.Get("/portfolio", svc.GetPortfolio)

		// Waitlist.
		r.Post("/waitlist", svc.AddToWaitlist)
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("sandbox-engine listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down sandbox-engine...")
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("sandbox-engine stopped")
}

// decimalEnv parses an environment variable as a decimal, returning zero
// when unset or malformed.
func decimalEnv(name string) decimal.Decimal {
	v := os.Getenv(name)
	if v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		slog.Warn("ignoring malformed decimal env var", "name", name, "value", v)
		return decimal.Zero
	}
	return d
}
