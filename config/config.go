package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Telegram configuration
	TelegramToken string
	AdminID       int64 // Telegram ID allowed to decide requests and run admin commands

	// Database configuration
	DatabaseURL string

	// HTTP configuration
	Port string

	// Game settings, amounts in kobo
	MinStake      int64
	MinWithdrawal int64

	// Logging
	LogLevel string

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Telegram
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// HTTP
		Port: os.Getenv("PORT"),

		// Game settings with defaults
		MinStake:      3000,  // 30.00
		MinWithdrawal: 10000, // 100.00

		// Logging
		LogLevel: os.Getenv("LOG_LEVEL"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if adminID := os.Getenv("ADMIN_ID"); adminID != "" {
		parsed, err := strconv.ParseInt(adminID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_ID must be a numeric Telegram ID: %w", err)
		}
		config.AdminID = parsed
	}

	// Override defaults if environment variables are set
	if stake := os.Getenv("MIN_STAKE"); stake != "" {
		if parsedStake, err := strconv.ParseInt(stake, 10, 64); err == nil {
			config.MinStake = parsedStake
		}
	}
	if withdrawal := os.Getenv("MIN_WITHDRAWAL"); withdrawal != "" {
		if parsedWithdrawal, err := strconv.ParseInt(withdrawal, 10, 64); err == nil {
			config.MinWithdrawal = parsedWithdrawal
		}
	}

	if config.Port == "" {
		config.Port = "8080"
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.AdminID == 0 {
			return nil, fmt.Errorf("ADMIN_ID is required")
		}
	}

	return config, nil
}
