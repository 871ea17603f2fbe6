package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shalom-dev/support-agent/internal/agent"
	"github.com/shalom-dev/support-agent/internal/api"
	"github.com/shalom-dev/support-agent/internal/api/handlers"
	"github.com/shalom-dev/support-agent/internal/repository"
	"github.com/shalom-dev/support-agent/internal/service"
	"github.com/shalom-dev/support-agent/pkg/auth"
	"github.com/shalom-dev/support-agent/pkg/config"
	"github.com/shalom-dev/support-agent/pkg/logger"
	"github.com/shalom-dev/support-agent/pkg/postgres"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting support agent service")

	if cfg.OpenAI.APIKey == "" {
		appLogger.Fatal("OPENAI_API_KEY is not set")
	}

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	faqRepo := repository.NewFaqRepository(db, appLogger)

	// The OpenAI client is constructed once here and injected; no
	// package-level model state anywhere downstream.
	openaiClient := openai.NewClient(option.WithAPIKey(cfg.OpenAI.APIKey))

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	embeddingService := service.NewEmbeddingService(&openaiClient.Embeddings, &cfg.OpenAI, appLogger)
	retrievalService := service.NewRetrievalService(embeddingService, faqRepo, cfg.Agent.TopK, appLogger)
	faqService := service.NewFaqService(faqRepo, embeddingService, appLogger)

	registry := agent.NewRegistry(cfg.Agent.TopK, appLogger)
	supportAgent := agent.New(&openaiClient.Chat.Completions, registry, agent.Config{
		Model:      cfg.OpenAI.Model,
		Retries:    cfg.Agent.Retries,
		RunTimeout: cfg.Agent.RunTimeout,
	}, appLogger)

	supportService := service.NewSupportService(supportAgent, userRepo, retrievalService, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	agentHandler := handlers.NewAgentHandler(supportService, appLogger)
	faqHandler := handlers.NewFaqHandler(faqService, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, agentHandler, faqHandler, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
