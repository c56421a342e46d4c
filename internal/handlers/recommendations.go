package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/lista/backend/internal/middleware"
	"github.com/lista/backend/internal/services"
	"github.com/lista/backend/pkg/logger"
	"github.com/lista/backend/pkg/utils"
)

type RecommendationsHandler struct {
	Recommendations *services.RecommendationService
}

func NewRecommendationsHandler(recommendations *services.RecommendationService) *RecommendationsHandler {
	return &RecommendationsHandler{Recommendations: recommendations}
}

// Generate asks the completion provider for suggestions based on the list
// item's entries and returns the stored recommendation.
func (h *RecommendationsHandler) Generate(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	listItemID, err := parseUUID(c.Params("list_item_id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid list item id")
	}

	recommendation, err := h.Recommendations.Generate(c.Context(), listItemID)
	if err != nil {
		if errors.Is(err, services.ErrNoItems) {
			return utils.Error(c, fiber.StatusNotFound, "No items found in the list.")
		}
		logger.ErrorWithUser(currentUser.ID.String(), "recommendation_failed", err, map[string]interface{}{
			"list_item_id": listItemID.String(),
		})
		return utils.Error(c, fiber.StatusInternalServerError,
			fmt.Sprintf("recommendation provider error: %v", err))
	}

	return utils.Success(c, fiber.StatusOK, recommendation)
}
