package models

import (
	"strings"

	"github.com/google/uuid"
)

// ItemsSeparator delimits individual entries inside ListItem.Items.
const ItemsSeparator = "|"

type ListItem struct {
	BaseModel
	Title    string    `json:"title" gorm:"type:varchar(255);not null;default:'No items'"`
	Items    string    `json:"items" gorm:"type:text;not null;default:'No items'"`
	OwnerID  uuid.UUID `json:"user" gorm:"type:uuid;not null;index"`
	IsActive bool      `json:"is_active" gorm:"not null;default:true"`

	Owner           User             `json:"-" gorm:"foreignKey:OwnerID;references:ID"`
	SharedWith      []GroupShare     `json:"-" gorm:"foreignKey:ListItemID"`
	Images          []ListItemImage  `json:"-" gorm:"foreignKey:ListItemID"`
	Recommendations []Recommendation `json:"-" gorm:"foreignKey:ListItemID"`
}

// SplitItems returns the trimmed entries of the pipe-delimited Items payload.
func (l *ListItem) SplitItems() []string {
	if strings.TrimSpace(l.Items) == "" {
		return nil
	}
	parts := strings.Split(l.Items, ItemsSeparator)
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
