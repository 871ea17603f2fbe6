package service

import (
	"context"

	"github.com/shalom-dev/support-agent/internal/agent"

	"go.uber.org/zap"
)

// SupportService is the inbound query surface of the agent core. It
// builds the per-run dependency set and hands off to the
// orchestration loop; accessors are shared, read-mostly collaborators,
// the Dependencies value itself is owned by a single run.
type SupportService struct {
	agent     *agent.Agent
	accounts  agent.AccountAccessor
	knowledge agent.KnowledgeSearcher
	logger    *zap.Logger
}

func NewSupportService(a *agent.Agent, accounts agent.AccountAccessor, knowledge agent.KnowledgeSearcher, logger *zap.Logger) *SupportService {
	return &SupportService{
		agent:     a,
		accounts:  accounts,
		knowledge: knowledge,
		logger:    logger,
	}
}

func (s *SupportService) HandleQuery(ctx context.Context, userID int64, query string) (*agent.SupportResult, error) {
	deps := &agent.Dependencies{
		UserID:    userID,
		Accounts:  s.accounts,
		Knowledge: s.knowledge,
	}

	return s.agent.Run(ctx, deps, query)
}
