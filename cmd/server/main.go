package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/cache"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/config"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/handler"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/repository"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/service"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/telegram"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Connect to database
	repo, err := repository.New(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	if cfg.Database.AutoMigrate {
		if err := repo.Migrate(); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	// Create services
	ledgerSvc := service.NewLedgerService(repo)
	balanceSvc := service.NewBalanceService(repo)
	withdrawalSvc := service.NewWithdrawalService(repo)
	if cfg.Telegram.BotToken != "" {
		bot, err := telegram.NewBot(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID)
		if err != nil {
			slog.Warn("telegram bot unavailable, admin notifications disabled", "error", err)
		} else {
			withdrawalSvc.SetNotifier(bot)
		}
	}
	levels := service.NewLevelClassifier(repo, cfg.Referral.Tiers)
	statsSvc := service.NewStatsService(repo, levels)

	partnerSvc := service.NewPartnerService(repo)
	partnerSvc.SetLevelClassifier(levels)

	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			slog.Warn("redis unavailable, partner cache disabled", "error", err)
		} else {
			defer client.Close()
			partnerSvc.SetCache(cache.NewRedisPartnerCache(client))
			slog.Info("partner cache enabled", "addr", cfg.Redis.Addr)
		}
	}

	fallback, err := service.NewCommissionRule(cfg.Referral.CommissionMode, cfg.Referral.CommissionValue)
	if err != nil {
		slog.Error("invalid commission config", "error", err)
		os.Exit(1)
	}
	commission := service.NewSettingsCommission(repo, fallback)

	ingestSvc := service.NewIngestService(repo, ledgerSvc, commission, service.IngestConfig{
		Currency:           cfg.Referral.Currency,
		RegistrationReward: cfg.Referral.RegistrationReward,
	})
	attributionSvc := service.NewAttributionService(repo, partnerSvc, ledgerSvc, ingestSvc, cfg.Referral.VisitReward)
	adminSvc := service.NewAdminService(repo, ledgerSvc, cfg.Referral.CommissionMode, cfg.Referral.CommissionValue)

	// Create handlers
	h := handler.New(cfg, repo, partnerSvc, attributionSvc, ingestSvc, ledgerSvc, balanceSvc, withdrawalSvc, statsSvc)
	adminHandler := handler.NewAdminHandler(adminSvc, partnerSvc, withdrawalSvc, statsSvc)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handler.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Webhook-Secret",
	}))

	handler.RegisterRoutes(app, h, adminHandler, adminSvc)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("shutting down server")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	// Start server
	slog.Info("server starting",
		"port", cfg.Server.Port,
		"environment", cfg.Server.Environment,
		"driver", repo.Driver(),
	)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		slog.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
