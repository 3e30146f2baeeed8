package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pennywise/internal/config"
	"pennywise/internal/db"
	"pennywise/internal/handlers"
	"pennywise/internal/services"
	"pennywise/internal/store"
	"pennywise/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	accounts := store.NewAccountStore(database)
	transactions := store.NewTransactionStore(database)
	stats := store.NewStatsStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()
	transactionService := services.NewTransactionService(txRunner, accounts, transactions, audit, hub)
	accountService := services.NewAccountService(txRunner, accounts, transactions, audit)
	statsService := services.NewStatsService(stats)

	handler := handlers.New(database, txRunner, cfg, users, accounts, transactions, audit, accountService, transactionService, statsService, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("pennywise API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
