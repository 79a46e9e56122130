package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmynk/splitchain/internal/api"
	"github.com/mmynk/splitchain/internal/auth"
	"github.com/mmynk/splitchain/internal/config"
	"github.com/mmynk/splitchain/internal/ledger"
	"github.com/mmynk/splitchain/internal/price"
	"github.com/mmynk/splitchain/internal/service"
	"github.com/mmynk/splitchain/internal/settle"
	"github.com/mmynk/splitchain/internal/storage/sqlite"
	"github.com/mmynk/splitchain/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	ledgerClient := ledger.NewClient(cfg.LedgerURL, ledger.WithDenom(cfg.Denom))
	slog.Info("Ledger client configured", "url", cfg.LedgerURL, "denom", cfg.Denom)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	prices := price.New(cfg.PriceFeedURL, cfg.PriceAsset)

	logger := slog.Default()
	handler := api.NewHandler(
		service.NewAuthService(authenticator, jwtManager, store, logger),
		service.NewGroupService(ledgerClient, store, logger),
		service.NewBalanceService(ledgerClient, store, logger),
		settle.New(ledgerClient),
		prices,
	)

	server := api.NewServer(cfg.ListenAddr, api.NewRouter(handler, jwtManager))

	go func() {
		slog.Info("Gateway listening", "address", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}
