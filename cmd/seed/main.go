package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shalom-dev/support-agent/internal/dto"
	"github.com/shalom-dev/support-agent/internal/models"
	"github.com/shalom-dev/support-agent/internal/repository"
	"github.com/shalom-dev/support-agent/internal/service"
	"github.com/shalom-dev/support-agent/pkg/auth"
	"github.com/shalom-dev/support-agent/pkg/config"
	"github.com/shalom-dev/support-agent/pkg/logger"
	"github.com/shalom-dev/support-agent/pkg/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// seedPassword is the demo credential shared by seeded accounts.
const seedPassword = "changeme123"

type seedUser struct {
	name   string
	email  string
	status models.AccountStatus
	plan   models.SubscriptionPlan
}

type seedFaq struct {
	question string
	answer   string
	category string
}

var seedUsers = []seedUser{
	{name: "Alice", email: "alice@gmail.com", status: models.AccountStatusActive, plan: models.PlanPremium},
	{name: "Bob", email: "bob@gmail.com", status: models.AccountStatusActive, plan: models.PlanBasic},
	{name: "Shalom", email: "shalom@gmail.com", status: models.AccountStatusInactive, plan: models.PlanEnterprise},
}

var seedFaqs = []seedFaq{
	{
		question: "How do I reset my password?",
		answer:   "You can reset your password by going to the settings page and clicking on 'Reset Password'.",
		category: "general",
	},
	{
		question: "What is the refund policy?",
		answer:   "We offer a 30-day money-back guarantee for all subscription plans.",
		category: "billing",
	},
	{
		question: "How do I upgrade my subscription?",
		answer:   "You can upgrade your subscription from the billing section in your account settings.",
		category: "billing",
	},
	{
		question: "What should I do if I encounter a technical issue?",
		answer:   "Please contact our support team via email or through the support portal.",
		category: "technical",
	},
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger.Info("Starting database seeding...")

	if err := createSchema(ctx, db, cfg.OpenAI.EmbeddingDimension); err != nil {
		appLogger.Fatal("Failed to create schema", zap.Error(err))
	}
	// Connections opened before the vector extension existed have no
	// pgvector codec registered; recycle them so seeding can write
	// embeddings.
	db.Reset()

	userRepo := repository.NewUserRepository(db, appLogger)
	faqRepo := repository.NewFaqRepository(db, appLogger)

	openaiClient := openai.NewClient(option.WithAPIKey(cfg.OpenAI.APIKey))
	embeddingService := service.NewEmbeddingService(&openaiClient.Embeddings, &cfg.OpenAI, appLogger)
	faqService := service.NewFaqService(faqRepo, embeddingService, appLogger)

	if err := seedAccounts(ctx, db, userRepo, appLogger); err != nil {
		appLogger.Fatal("Failed to seed accounts", zap.Error(err))
	}

	if err := seedKnowledgeBase(ctx, db, faqService, appLogger); err != nil {
		appLogger.Fatal("Failed to seed knowledge base", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!")
}

func createSchema(ctx context.Context, db *pgxpool.Pool, embeddingDim int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS users (
			user_id           BIGSERIAL PRIMARY KEY,
			name              TEXT NOT NULL,
			email             TEXT NOT NULL UNIQUE,
			password_hash     TEXT NOT NULL,
			account_status    TEXT NOT NULL,
			subscription_plan TEXT NOT NULL,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS faqs (
			id         BIGSERIAL PRIMARY KEY,
			question   TEXT NOT NULL,
			answer     TEXT NOT NULL,
			category   TEXT,
			embedding  vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, embeddingDim),
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

func seedAccounts(ctx context.Context, db *pgxpool.Pool, userRepo *repository.UserRepository, logger *zap.Logger) error {
	var count int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		logger.Info("Users already seeded, skipping", zap.Int("count", count))
		return nil
	}

	passwordHash, err := auth.HashPassword(seedPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	now := time.Now()
	for _, su := range seedUsers {
		user := &models.User{
			Name:             su.name,
			Email:            su.email,
			PasswordHash:     passwordHash,
			AccountStatus:    su.status,
			SubscriptionPlan: su.plan,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user %s: %w", su.email, err)
		}
		logger.Info("Seeded user", zap.Int64("user_id", user.UserID), zap.String("name", user.Name))
	}

	return nil
}

func seedKnowledgeBase(ctx context.Context, db *pgxpool.Pool, faqService *service.FaqService, logger *zap.Logger) error {
	var count int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM faqs").Scan(&count); err != nil {
		return fmt.Errorf("failed to count faqs: %w", err)
	}
	if count > 0 {
		logger.Info("FAQs already seeded, skipping", zap.Int("count", count))
		return nil
	}

	for _, sf := range seedFaqs {
		faq, err := faqService.Create(ctx, &dto.FaqCreateRequest{
			Question: sf.question,
			Answer:   sf.answer,
			Category: sf.category,
		})
		if err != nil {
			return fmt.Errorf("failed to seed FAQ %q: %w", sf.question, err)
		}
		logger.Info("Seeded FAQ", zap.Int64("id", faq.ID), zap.String("category", faq.Category))
	}

	return nil
}
