package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"minebet/bot"
	"minebet/config"
	"minebet/database"
	"minebet/events"
	"minebet/game"
	"minebet/repository"
	"minebet/service"
	"minebet/web"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	configureLogging(cfg)

	log.Info("Starting mines bot...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Info("Initializing services...")
	ledgerService := service.NewLedgerService(uowFactory)
	requestService := service.NewRequestService(uowFactory)
	sessionService := service.NewSessionService(ledgerService, game.NewEngine(), cfg.MinStake)
	log.Info("Services initialized successfully")

	// Initialize Telegram bot
	log.Info("Initializing Telegram bot...")
	botConfig := bot.Config{
		Token:         cfg.TelegramToken,
		AdminID:       cfg.AdminID,
		MinStake:      cfg.MinStake,
		MinWithdrawal: cfg.MinWithdrawal,
	}
	telegramBot, err := bot.New(botConfig, ledgerService, requestService, sessionService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Telegram bot initialized successfully")

	// Initialize health server
	healthServer := web.NewServer(":"+cfg.Port, db)

	log.Infof("Bot is running in %s mode...", cfg.Environment)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return telegramBot.Run(gctx)
	})
	g.Go(func() error {
		return healthServer.Run(gctx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}

	log.Info("Shutdown completed")
	return nil
}

func configureLogging(cfg *config.Config) {
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}
