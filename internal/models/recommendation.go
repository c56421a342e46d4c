package models

import "github.com/google/uuid"

// Recommendation is an append-only log of generated suggestions for a
// list item. Rows are never updated after creation.
type Recommendation struct {
	BaseModel
	ListItemID       uuid.UUID `json:"list_item" gorm:"type:uuid;not null;index"`
	RecommendedItems string    `json:"recommended_items" gorm:"type:text;not null"`

	ListItem ListItem `json:"-" gorm:"foreignKey:ListItemID;references:ID"`
}
