package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/narralabs/narramancer/internal/config"
	"github.com/narralabs/narramancer/internal/engine"
	"github.com/narralabs/narramancer/internal/logger"
	"github.com/narralabs/narramancer/internal/services"
	"github.com/narralabs/narramancer/internal/storage"
	"github.com/narralabs/narramancer/internal/telegram"
	"github.com/narralabs/narramancer/pkg/textfilter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	if cfg.TelegramToken == "" {
		log.Error("TELEGRAM_TOKEN is required")
		os.Exit(1)
	}

	log.Info("Starting Narramancer Telegram bot",
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName,
		"workers", cfg.TelegramWorkers)

	var llmService services.LLMService
	switch cfg.LLMProvider {
	case config.ProviderMistral:
		if cfg.MistralAPIKey == "" {
			log.Error("Mistral API key is required when using mistral provider")
			os.Exit(1)
		}
		llmService = services.NewMistralService(cfg.MistralAPIKey, cfg.ModelName, log)
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider)
		os.Exit(1)
	}

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.SessionTTL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer storageCancel()

	if err := store.Ping(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	var opts []engine.Option
	if cfg.FamilyFriendly {
		opts = append(opts, engine.WithSoftener(textfilter.NewSoftener()))
	}
	eng := engine.New(store, llmService, log, opts...)

	bot, err := telegram.New(cfg.TelegramToken, eng, log, cfg.TelegramWorkers)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("Bot is shutting down...")
		bot.StopPolling()
		cancel()
	}()

	if err := bot.StartPolling(ctx); err != nil && err != context.Canceled {
		log.Error("Polling stopped", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Bot exited")
}
