package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lista/backend/internal/models"
	"github.com/lista/backend/pkg/logger"
)

// ErrNoItems is returned when the list item is missing or holds no entries
// to base a recommendation on.
var ErrNoItems = errors.New("no items found in the list")

// Completer produces a completion for a prompt. The production
// implementation calls the OpenAI chat completions API.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// RecommendationService generates item suggestions for a shopping list and
// appends them to the recommendation log.
type RecommendationService struct {
	DB        *gorm.DB
	Completer Completer
}

func NewRecommendationService(db *gorm.DB, completer Completer) *RecommendationService {
	return &RecommendationService{DB: db, Completer: completer}
}

// Generate builds a prompt from the list item's entries, asks the completer
// for suggestions and persists the result. Recommendation rows are never
// updated afterwards.
func (r *RecommendationService) Generate(ctx context.Context, listItemID uuid.UUID) (*models.Recommendation, error) {
	var item models.ListItem
	if err := r.DB.WithContext(ctx).First(&item, "id = ?", listItemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNoItems
		}
		return nil, err
	}

	items := item.SplitItems()
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	prompt := fmt.Sprintf("Recommend items for a shopping list that includes: %s", strings.Join(items, ", "))

	completion, err := r.Completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	suggestions := splitSuggestions(completion)
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("completion contained no suggestions")
	}

	recommendation := models.Recommendation{
		ListItemID:       item.ID,
		RecommendedItems: strings.Join(suggestions, ","),
	}
	if err := r.DB.WithContext(ctx).Create(&recommendation).Error; err != nil {
		return nil, err
	}

	logger.Info("recommendation_generated", map[string]interface{}{
		"list_item_id": item.ID.String(),
		"suggestions":  len(suggestions),
	})

	return &recommendation, nil
}

func splitSuggestions(completion string) []string {
	parts := strings.Split(completion, ",")
	suggestions := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			suggestions = append(suggestions, trimmed)
		}
	}
	return suggestions
}
