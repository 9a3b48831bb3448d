package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"guildmint/internal/bank"
	"guildmint/internal/business"
	"guildmint/internal/config"
	"guildmint/internal/crime"
	"guildmint/internal/db"
	"guildmint/internal/games"
	"guildmint/internal/ledger"
	"guildmint/internal/perks"
	"guildmint/internal/pvp"
	"guildmint/internal/rng"
	"guildmint/internal/social"
	"guildmint/internal/stocks"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	rand := rng.NewFromTime()
	store := ledger.NewStore(pool, logger, 0)
	bankSvc := bank.NewService(store, logger, 0.03)
	businessSvc := business.NewService(store, logger)
	crimeSvc := crime.NewService(store, logger, rand)
	gamesSvc := games.NewService(store, logger, rand)
	pvpSvc := pvp.NewService(store, logger, rand)
	socialSvc := social.NewService(store, logger)
	stocksSvc := stocks.NewService(store, logger, rand)
	perksSvc := perks.NewService(store, logger)

	c := cron.New()
	schedule := func(name, spec string, job func(context.Context) error) {
		_, err := c.AddFunc(spec, func() {
			if err := job(ctx); err != nil {
				logger.Error("job failed", "job", name, "err", err)
				return
			}
			logger.Info("job complete", "job", name)
		})
		if err != nil {
			logger.Error("bad cron spec", "job", name, "spec", spec, "err", err)
			os.Exit(1)
		}
	}

	schedule("price-tick", cfg.PriceTickSpec, func(ctx context.Context) error {
		_, err := stocksSvc.Tick(ctx)
		return err
	})
	schedule("interest", cfg.InterestSpec, func(ctx context.Context) error {
		_, err := bankSvc.AccrueInterest(ctx)
		return err
	})
	schedule("overdue-loans", cfg.OverdueSpec, func(ctx context.Context) error {
		_, err := bankSvc.SweepOverdue(ctx)
		return err
	})
	schedule("cleanup", cfg.CleanupSpec, func(ctx context.Context) error {
		if _, err := crimeSvc.SweepJail(ctx); err != nil {
			return err
		}
		if _, err := perksSvc.ExpireBoosters(ctx); err != nil {
			return err
		}
		if _, err := pvpSvc.SweepExpired(ctx); err != nil {
			return err
		}
		_, err := socialSvc.SweepExpired(ctx)
		return err
	})
	schedule("business-income", cfg.BusinessSpec, func(ctx context.Context) error {
		_, err := businessSvc.SweepIncome(ctx, cfg.BusinessWindow)
		return err
	})
	schedule("blackjack-sessions", cfg.SessionSpec, func(ctx context.Context) error {
		_, err := gamesSvc.SweepSessions(ctx)
		return err
	})

	c.Start()
	logger.Info("guildmint worker started",
		"price_tick", cfg.PriceTickSpec,
		"interest", cfg.InterestSpec,
		"overdue", cfg.OverdueSpec,
		"cleanup", cfg.CleanupSpec,
		"business", cfg.BusinessSpec,
		"sessions", cfg.SessionSpec)

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("worker shutdown")
}
