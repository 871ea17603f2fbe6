package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/shalom-dev/support-agent/internal/agent"
	"github.com/shalom-dev/support-agent/internal/dto"
	"github.com/shalom-dev/support-agent/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AgentHandler struct {
	supportService *service.SupportService
	logger         *zap.Logger
}

func NewAgentHandler(supportService *service.SupportService, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{
		supportService: supportService,
		logger:         logger,
	}
}

// Query runs one support query through the agent and returns the
// structured verdict.
func (h *AgentHandler) Query(c *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query is required",
		})
	}

	result, err := h.supportService.HandleQuery(c.Context(), req.UserID, req.Query)
	if err != nil {
		return h.mapRunError(c, err)
	}

	return c.JSON(dto.QueryResponse{
		UserID:             req.UserID,
		Query:              req.Query,
		SupportAdvice:      result.SupportAdvice,
		EscalationRequired: result.EscalationRequired,
		RiskLevel:          result.RiskLevel,
	})
}

func (h *AgentHandler) mapRunError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("Support run timed out", zap.Error(err))
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
			"error": "Support run timed out",
		})
	case errors.Is(err, agent.ErrRetryBudgetExhausted):
		h.logger.Error("Support run exhausted retries", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		h.logger.Error("Support run failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error processing query: " + err.Error(),
		})
	}
}
