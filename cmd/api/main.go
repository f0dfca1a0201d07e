package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/narralabs/narramancer/internal/config"
	"github.com/narralabs/narramancer/internal/engine"
	"github.com/narralabs/narramancer/internal/handlers"
	"github.com/narralabs/narramancer/internal/logger"
	"github.com/narralabs/narramancer/internal/middleware"
	"github.com/narralabs/narramancer/internal/services"
	"github.com/narralabs/narramancer/internal/storage"
	"github.com/narralabs/narramancer/pkg/textfilter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Narramancer API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	var llmService services.LLMService
	switch cfg.LLMProvider {
	case config.ProviderMistral:
		if cfg.MistralAPIKey == "" {
			log.Error("Mistral API key is required when using mistral provider")
			os.Exit(1)
		}
		llmService = services.NewMistralService(cfg.MistralAPIKey, cfg.ModelName, log)
		log.Info("Using Mistral LLM provider")
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
		log.Info("Using Anthropic LLM provider")
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
	log.Info("Storage connection established successfully")

	var opts []engine.Option
	if cfg.FamilyFriendly {
		opts = append(opts, engine.WithSoftener(textfilter.NewSoftener()))
	}
	eng := engine.New(store, llmService, log, opts...)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(store, log))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/v1/chat", handlers.NewChatHandler(eng, log))
	mux.Handle("/v1/roll", handlers.NewRollHandler(eng, log))

	sessionHandler := handlers.NewSessionHandler(eng, log)
	mux.Handle("/v1/session", sessionHandler)
	mux.Handle("/v1/session/", sessionHandler)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(mux),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}
