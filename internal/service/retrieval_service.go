package service

import (
	"context"
	"fmt"

	"github.com/shalom-dev/support-agent/internal/models"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

type textEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type nearestSearcher interface {
	SearchNearest(ctx context.Context, embedding pgvector.Vector, topK int) ([]*models.FaqMatch, error)
}

// RetrievalService answers semantic FAQ queries: embed the query text,
// then rank stored entries by cosine distance. It satisfies
// agent.KnowledgeSearcher.
type RetrievalService struct {
	embedder    textEmbedder
	faqs        nearestSearcher
	defaultTopK int
	logger      *zap.Logger
}

func NewRetrievalService(embedder textEmbedder, faqs nearestSearcher, defaultTopK int, logger *zap.Logger) *RetrievalService {
	return &RetrievalService{
		embedder:    embedder,
		faqs:        faqs,
		defaultTopK: defaultTopK,
		logger:      logger,
	}
}

// Search returns up to topK entries nearest to query, most relevant
// first. topK <= 0 means the configured default. No matches is an
// empty slice, never an error.
func (s *RetrievalService) Search(ctx context.Context, query string, topK int) ([]*models.FaqMatch, error) {
	if topK <= 0 {
		topK = s.defaultTopK
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed search query: %w", err)
	}

	matches, err := s.faqs.SearchNearest(ctx, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search knowledge base: %w", err)
	}

	s.logger.Debug("Knowledge search completed",
		zap.String("query", query),
		zap.Int("results", len(matches)),
	)

	return matches, nil
}
