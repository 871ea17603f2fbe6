package handlers

import (
	"errors"
	"time"

	"github.com/shalom-dev/support-agent/internal/dto"
	"github.com/shalom-dev/support-agent/internal/models"
	"github.com/shalom-dev/support-agent/internal/repository"
	"github.com/shalom-dev/support-agent/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type FaqHandler struct {
	faqService *service.FaqService
	logger     *zap.Logger
}

func NewFaqHandler(faqService *service.FaqService, logger *zap.Logger) *FaqHandler {
	return &FaqHandler{
		faqService: faqService,
		logger:     logger,
	}
}

func (h *FaqHandler) Create(c *fiber.Ctx) error {
	var req dto.FaqCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Question == "" || req.Answer == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "question and answer are required",
		})
	}

	faq, err := h.faqService.Create(c.Context(), &req)
	if err != nil {
		h.logger.Error("FAQ creation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error creating FAQ",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toFaqResponse(faq))
}

func (h *FaqHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid FAQ id",
		})
	}

	var req dto.FaqUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	faq, err := h.faqService.Update(c.Context(), int64(id), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "FAQ not found",
			})
		}
		h.logger.Error("FAQ update failed", zap.Int("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error updating FAQ",
		})
	}

	return c.JSON(toFaqResponse(faq))
}

func (h *FaqHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid FAQ id",
		})
	}

	if err := h.faqService.Delete(c.Context(), int64(id)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "FAQ not found",
			})
		}
		h.logger.Error("FAQ deletion failed", zap.Int("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error deleting FAQ",
		})
	}

	return c.JSON(fiber.Map{"message": "FAQ deleted successfully"})
}

func (h *FaqHandler) List(c *fiber.Ctx) error {
	faqs, err := h.faqService.List(c.Context())
	if err != nil {
		h.logger.Error("FAQ listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error retrieving FAQs",
		})
	}

	return c.JSON(fiber.Map{"faqs": toFaqResponses(faqs)})
}

func (h *FaqHandler) ListByCategory(c *fiber.Ctx) error {
	category := c.Params("category")

	faqs, err := h.faqService.ListByCategory(c.Context(), category)
	if err != nil {
		h.logger.Error("FAQ listing failed", zap.String("category", category), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error retrieving FAQs",
		})
	}

	if len(faqs) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No FAQs found for category '" + category + "'",
		})
	}

	return c.JSON(fiber.Map{"faqs": toFaqResponses(faqs)})
}

func toFaqResponse(faq *models.Faq) dto.FaqResponse {
	return dto.FaqResponse{
		ID:        faq.ID,
		Question:  faq.Question,
		Answer:    faq.Answer,
		Category:  faq.Category,
		CreatedAt: faq.CreatedAt.Format(time.RFC3339),
	}
}

func toFaqResponses(faqs []*models.Faq) []dto.FaqResponse {
	responses := make([]dto.FaqResponse, len(faqs))
	for i, faq := range faqs {
		responses[i] = toFaqResponse(faq)
	}
	return responses
}
