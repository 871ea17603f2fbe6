package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shalom-dev/support-agent/internal/dto"
	"github.com/shalom-dev/support-agent/internal/models"
	"github.com/shalom-dev/support-agent/internal/repository"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// FaqService owns knowledge base maintenance. Entries are embedded at
// write time with the same embedder the agent uses at query time, so
// write-side and read-side vectors always share model and dimension.
type FaqService struct {
	faqRepo  *repository.FaqRepository
	embedder textEmbedder
	logger   *zap.Logger
}

func NewFaqService(faqRepo *repository.FaqRepository, embedder textEmbedder, logger *zap.Logger) *FaqService {
	return &FaqService{
		faqRepo:  faqRepo,
		embedder: embedder,
		logger:   logger,
	}
}

func (s *FaqService) Create(ctx context.Context, req *dto.FaqCreateRequest) (*models.Faq, error) {
	question := sanitizeUTF8(req.Question)
	answer := sanitizeUTF8(req.Answer)

	embedding, err := s.embedFaq(ctx, question, answer)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	faq := &models.Faq{
		Question:  question,
		Answer:    answer,
		Category:  req.Category,
		Embedding: embedding,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.faqRepo.Create(ctx, faq); err != nil {
		return nil, fmt.Errorf("failed to create FAQ: %w", err)
	}

	s.logger.Info("FAQ created", zap.Int64("id", faq.ID), zap.String("category", faq.Category))
	return faq, nil
}

// Update replaces the given fields and always recomputes the
// embedding from the resulting text, so the stored vector can never
// drift from the entry's content.
func (s *FaqService) Update(ctx context.Context, id int64, req *dto.FaqUpdateRequest) (*models.Faq, error) {
	faq, err := s.faqRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Question != "" {
		faq.Question = sanitizeUTF8(req.Question)
	}
	if req.Answer != "" {
		faq.Answer = sanitizeUTF8(req.Answer)
	}
	if req.Category != "" {
		faq.Category = req.Category
	}

	embedding, err := s.embedFaq(ctx, faq.Question, faq.Answer)
	if err != nil {
		return nil, err
	}
	faq.Embedding = embedding

	if err := s.faqRepo.Update(ctx, faq); err != nil {
		return nil, fmt.Errorf("failed to update FAQ %d: %w", id, err)
	}

	return faq, nil
}

func (s *FaqService) Delete(ctx context.Context, id int64) error {
	if err := s.faqRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("FAQ deleted", zap.Int64("id", id))
	return nil
}

func (s *FaqService) List(ctx context.Context) ([]*models.Faq, error) {
	return s.faqRepo.List(ctx)
}

func (s *FaqService) ListByCategory(ctx context.Context, category string) ([]*models.Faq, error) {
	return s.faqRepo.ListByCategory(ctx, category)
}

func (s *FaqService) embedFaq(ctx context.Context, question, answer string) (*pgvector.Vector, error) {
	raw, err := s.embedder.Embed(ctx, question+"\n"+answer)
	if err != nil {
		return nil, fmt.Errorf("failed to embed FAQ: %w", err)
	}

	vector := pgvector.NewVector(raw)
	return &vector, nil
}
