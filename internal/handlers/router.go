package handlers

import (
	"net/http"

	"pennywise/internal/config"
	"pennywise/internal/db"
	"pennywise/internal/middleware"
	"pennywise/internal/store"
	"pennywise/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	reconcileDB    store.Selecter
	txRunner       db.TxRunner
	cfg            config.Config
	users          UserStore
	accounts       AccountStore
	transactions   TransactionStore
	audit          AuditStore
	accountService AccountService
	service        TransactionService
	stats          StatsService
	hub            *websocket.Hub
}

func New(reconcileDB store.Selecter, txRunner db.TxRunner, cfg config.Config, users UserStore, accounts AccountStore, transactions TransactionStore, audit AuditStore, accountService AccountService, service TransactionService, stats StatsService, hub *websocket.Hub) *Handler {
	return &Handler{
		reconcileDB:    reconcileDB,
		txRunner:       txRunner,
		cfg:            cfg,
		users:          users,
		accounts:       accounts,
		transactions:   transactions,
		audit:          audit,
		accountService: accountService,
		service:        service,
		stats:          stats,
		hub:            hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})
	router.Route("/accounts", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/", h.CreateAccount)
		r.Get("/", h.ListAccounts)
		r.Get("/stats/balance", h.TotalBalance)
		r.Get("/stats/types", h.AccountTypeStats)
		r.Get("/self-check", h.SelfCheck)
		r.Get("/{id}", h.GetAccount)
		r.Put("/{id}", h.UpdateAccount)
		r.Delete("/{id}", h.DeleteAccount)
	})
	router.Route("/transactions", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/", h.CreateTransaction)
		r.Get("/", h.ListTransactions)
		r.Get("/stats/categories", h.CategoryStats)
		r.Get("/stats/monthly", h.MonthlyStats)
		r.Get("/statistics", h.Statistics)
		r.Get("/{id}", h.GetTransaction)
		r.Put("/{id}", h.UpdateTransaction)
		r.Delete("/{id}", h.DeleteTransaction)
		r.Post("/{id}/tags", h.AddTag)
		r.Delete("/{id}/tags", h.RemoveTag)
	})
	router.Get("/ws/balances", h.WSBalances)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
