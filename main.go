package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"tradeTrackerBot/config"
	"tradeTrackerBot/internal/adapters/discord"
	"tradeTrackerBot/internal/adapters/logger"
	"tradeTrackerBot/internal/adapters/quotes"
	"tradeTrackerBot/internal/adapters/sqlite"
	"tradeTrackerBot/internal/app"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing database repository")
		}
	}()

	// 4. Initialize Quote Registry (one provider per supported exchange)
	registry, err := quotes.NewDefaultRegistry(appLogger, quotes.BaseURLs{
		Binance: cfg.BinanceBaseURL,
		Bybit:   cfg.BybitBaseURL,
		Bitget:  cfg.BitgetBaseURL,
		Mexc:    cfg.MexcBaseURL,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize quote registry: %v", err)
	}
	appLogger.Info(ctx, "Quote registry initialized")

	// 5. Initialize Discord session and renderer
	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		log.Fatalf("FATAL: Failed to create Discord session: %v", err)
	}
	renderer, err := discord.NewRenderer(session, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Discord renderer: %v", err)
	}

	// 6. Initialize the trade lifecycle service and interaction layer
	service, err := app.NewTradeService(appLogger, repo, registry, renderer, cfg.QuoteTimeout)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize trade service: %v", err)
	}
	bot, err := discord.NewBot(session, service, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Discord bot: %v", err)
	}

	if err := bot.Start(); err != nil {
		log.Fatalf("FATAL: Failed to connect to Discord: %v", err)
	}
	defer func() {
		if err := bot.Stop(); err != nil {
			appLogger.Error(ctx, err, "Error closing Discord session")
		}
	}()
	appLogger.Info(ctx, "Discord bot connected")

	// 7. Start the background refresher
	refresher, err := app.NewRefresher(appLogger, repo, service, cfg.RefreshInterval)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize refresher: %v", err)
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go refresher.Run(runCtx)

	// 8. Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	appLogger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
	cancel()

	appLogger.Info(ctx, "Application finished gracefully.")
}
