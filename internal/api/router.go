package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/splitchain/internal/auth"
	"github.com/mmynk/splitchain/internal/middleware"
)

// NewRouter constructs the HTTP router with all API endpoints registered.
func NewRouter(h *Handler, jwtManager *auth.JWTManager) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/login", h.Login)
	r.Get("/api/price", h.GetPrice)

	// Everything else acts as a ledger address and needs a session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwtManager))

		r.Get("/api/me", h.Me)

		r.Post("/api/groups", h.CreateGroup)
		r.Get("/api/groups", h.ListGroups)
		r.Get("/api/groups/{groupID}", h.GetGroup)
		r.Post("/api/groups/{groupID}/join", h.JoinGroup)
		r.Post("/api/groups/{groupID}/leave", h.LeaveGroup)

		r.Post("/api/groups/{groupID}/expenses", h.AddExpense)
		r.Get("/api/groups/{groupID}/expenses", h.ListExpenses)
		r.Get("/api/expenses/{expenseID}", h.GetExpense)

		r.Get("/api/groups/{groupID}/balances", h.GetBalances)
		r.Get("/api/groups/{groupID}/debts", h.GetDebts)

		r.Post("/api/groups/{groupID}/settle", h.SettleDebt)
		r.Post("/api/groups/{groupID}/settle-all", h.SettleAllDebts)
	})

	return r
}
