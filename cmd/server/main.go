package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fundchain/internal/cache"
	"fundchain/internal/config"
	"fundchain/internal/db"
	"fundchain/internal/handlers"
	"fundchain/internal/services"
	"fundchain/internal/store"
	"fundchain/internal/websocket"

	"github.com/sirupsen/logrus"
)

func setupLogging(cfg config.Config) {
	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func main() {
	cfg := config.Load()
	setupLogging(cfg)

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	rdb, err := cache.Connect(pingCtx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	cancelPing()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}
	if rdb == nil {
		logrus.Info("REDIS_ADDR not set, profile cache disabled")
	} else {
		defer rdb.Close()
	}

	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()
	ledger := services.NewLedger(txRunner, services.Stores{
		Profiles:  store.NewProfileStore(database),
		Registry:  store.NewRegistryStore(database),
		Campaigns: store.NewCampaignStore(database),
		Stats:     store.NewStatsStore(database),
		Loans:     store.NewLoanStore(database),
		Proposals: store.NewProposalStore(database),
		Members:   store.NewMemberStore(database),
		Treasury:  store.NewTreasuryStore(database),
		Counters:  store.NewCounterStore(database),
		Transfers: store.NewTransferStore(database),
		Audit:     store.NewAuditStore(database),
	}, services.OptionsFromConfig(cfg), hub, cache.NewProfileCache(rdb, cfg.CacheTTL))

	handler := handlers.New(txRunner, cfg, store.NewAccountStore(database), ledger, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":        server.Addr,
			"contract":    cfg.ContractAccount,
			"refund_mode": cfg.RefundMode,
			"single_vote": cfg.SingleVote,
		}).Info("fundchain API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatalf("shutdown error: %v", err)
	}
	logrus.Info("server stopped")
}
