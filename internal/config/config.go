package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderMistral   = "mistral"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// LLM provider selection
	LLMProvider     string
	ModelName       string
	MistralAPIKey   string
	AnthropicAPIKey string

	// Session store
	RedisURL   string
	SessionTTL time.Duration

	// Telegram delivery surface (cmd/bot)
	TelegramToken   string
	TelegramWorkers int

	// Soften narrator language for family play
	FamilyFriendly bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderMistral)),
		ModelName:       getEnv("MODEL_NAME", "mistral-large-latest"),
		MistralAPIKey:   os.Getenv("MISTRAL_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		RedisURL:        getEnv("REDIS_URL", "localhost:6379"),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		TelegramWorkers: getEnvInt("TELEGRAM_WORKERS", 5),
		FamilyFriendly:  getEnvBool("FAMILY_FRIENDLY", false),
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = ttl

	switch cfg.LLMProvider {
	case ProviderMistral, ProviderAnthropic:
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER %q, supported: %s, %s",
			cfg.LLMProvider, ProviderMistral, ProviderAnthropic)
	}

	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
