package service

import (
	"context"
	"fmt"

	"github.com/shalom-dev/support-agent/pkg/config"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// DimensionMismatchError means the embedding endpoint returned a
// vector of a different size than the faqs table was provisioned for.
// This is a configuration error, fatal to the run: ranking with
// incompatible vectors would be silently wrong.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: configured %d, model returned %d", e.Want, e.Got)
}

// embeddingClient is the slice of the embeddings API the service
// needs. *openai.EmbeddingService satisfies it.
type embeddingClient interface {
	New(ctx context.Context, body openai.EmbeddingNewParams, opts ...option.RequestOption) (*openai.CreateEmbeddingResponse, error)
}

// EmbeddingService converts free text into fixed-length vectors. The
// same service embeds FAQ entries at write time and queries at read
// time, which keeps metric and dimensionality consistent end to end.
type EmbeddingService struct {
	embeddings embeddingClient
	config     *config.OpenAIConfig
	logger     *zap.Logger
}

func NewEmbeddingService(embeddings embeddingClient, cfg *config.OpenAIConfig, logger *zap.Logger) *EmbeddingService {
	return &EmbeddingService{
		embeddings: embeddings,
		config:     cfg,
		logger:     logger,
	}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(s.config.EmbeddingModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embedding service returned no vector")
	}

	raw := resp.Data[0].Embedding
	if s.config.EmbeddingDimension > 0 && len(raw) != s.config.EmbeddingDimension {
		return nil, &DimensionMismatchError{Want: s.config.EmbeddingDimension, Got: len(raw)}
	}

	vector := make([]float32, len(raw))
	for i, v := range raw {
		vector[i] = float32(v)
	}

	return vector, nil
}
