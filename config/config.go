package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Discord
	BotToken string

	// Trade tracking
	RefreshInterval time.Duration // How often open trades are re-priced
	QuoteTimeout    time.Duration // Bound for user-facing price fetches

	// Quote endpoints; empty values keep each venue's production API
	BinanceBaseURL string
	BybitBaseURL   string
	BitgetBaseURL  string
	MexcBaseURL    string

	// Database
	DBPath string

	// Logging
	LogLevel string
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string

	cfg.BotToken = getEnv("DISCORD_BOT_TOKEN", "")
	if cfg.BotToken == "" {
		errs = append(errs, "DISCORD_BOT_TOKEN must be set")
	}

	refreshSeconds := getEnvAsInt("TRADE_REFRESH_INTERVAL_SECONDS", 60)
	if refreshSeconds <= 0 {
		errs = append(errs, "TRADE_REFRESH_INTERVAL_SECONDS must be positive")
	}
	cfg.RefreshInterval = time.Duration(refreshSeconds) * time.Second

	quoteTimeoutSeconds := getEnvAsInt("QUOTE_TIMEOUT_SECONDS", 5)
	if quoteTimeoutSeconds <= 0 {
		errs = append(errs, "QUOTE_TIMEOUT_SECONDS must be positive")
	}
	cfg.QuoteTimeout = time.Duration(quoteTimeoutSeconds) * time.Second

	cfg.BinanceBaseURL = getEnv("BINANCE_BASE_URL", "")
	cfg.BybitBaseURL = getEnv("BYBIT_BASE_URL", "")
	cfg.BitgetBaseURL = getEnv("BITGET_BASE_URL", "")
	cfg.MexcBaseURL = getEnv("MEXC_BASE_URL", "")

	cfg.DBPath = getEnv("DB_PATH", "./data/trades.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
