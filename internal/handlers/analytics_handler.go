package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/services"
)

type analyticsApplicationService interface {
	UserAnalytics(ctx context.Context, userID int64) (*models.ProfileAnalytics, error)
}

type AnalyticsHandler struct {
	service analyticsApplicationService
}

func NewAnalyticsHandler(service analyticsApplicationService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) UserAnalytics(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	analytics, err := h.service.UserAnalytics(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrEducatorNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"error": "Educator profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to compute analytics"})
	}

	return c.JSON(fiber.Map{"analytics": analytics})
}
