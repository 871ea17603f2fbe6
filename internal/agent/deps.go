package agent

import (
	"context"

	"github.com/shalom-dev/support-agent/internal/models"
)

// AccountAccessor reads support accounts. *repository.UserRepository
// satisfies it in production.
type AccountAccessor interface {
	GetByID(ctx context.Context, userID int64) (*models.User, error)
}

// KnowledgeSearcher retrieves the FAQ entries semantically closest to
// a free-text query. *service.RetrievalService satisfies it in
// production. topK <= 0 means the searcher's configured default.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]*models.FaqMatch, error)
}

// Dependencies carries the per-run context: the account the query is
// about plus the read-only accessors the tools need. Construct one per
// incoming query; a Dependencies value is owned by a single run and
// must not be shared between concurrent runs.
type Dependencies struct {
	UserID    int64
	Accounts  AccountAccessor
	Knowledge KnowledgeSearcher
}
