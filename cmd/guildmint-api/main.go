package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guildmint/internal/api"
	"guildmint/internal/auth"
	"guildmint/internal/bank"
	"guildmint/internal/business"
	"guildmint/internal/config"
	"guildmint/internal/crime"
	"guildmint/internal/db"
	"guildmint/internal/games"
	"guildmint/internal/ledger"
	"guildmint/internal/levels"
	"guildmint/internal/perks"
	"guildmint/internal/pvp"
	"guildmint/internal/rng"
	"guildmint/internal/social"
	"guildmint/internal/stats"
	"guildmint/internal/stocks"
	"guildmint/internal/tourney"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("migrate failed", "err", err)
			os.Exit(1)
		}
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	rand := rng.NewFromTime()
	store := ledger.NewStore(pool, logger, cfg.StartingBalance)
	tokens := auth.NewManager(cfg.TokenSecret, cfg.TokenTTL, cfg.AdminPasswordHash)

	server := api.New(cfg, logger, api.Deps{
		Tokens:   tokens,
		Store:    store,
		Bank:     bank.NewService(store, logger, cfg.DepositAPR),
		Business: business.NewService(store, logger),
		Crime:    crime.NewService(store, logger, rand),
		Games:    games.NewService(store, logger, rand),
		PvP:      pvp.NewService(store, logger, rand),
		Social:   social.NewService(store, logger),
		Stocks:   stocks.NewService(store, logger, rand),
		Tourney:  tourney.NewService(store, logger, rand),
		Levels:   levels.NewService(store, logger, rand),
		Perks:    perks.NewService(store, logger),
		Stats:    stats.NewService(store, logger),
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("guildmint api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
