package models

import "github.com/google/uuid"

// ListItemImage is one entry of the ordered image collection of a list item.
// Index is zero-based display order; after deletions the collection is
// compacted so indices stay gap-free.
type ListItemImage struct {
	BaseModel
	ListItemID  uuid.UUID `json:"list_item" gorm:"type:uuid;not null;index"`
	StoragePath string    `json:"storage_path" gorm:"type:text;not null"`
	Index       int       `json:"index" gorm:"column:idx;not null;default:0"`
	MimeType    string    `json:"mime_type" gorm:"type:varchar(50)"`

	ListItem ListItem `json:"-" gorm:"foreignKey:ListItemID;references:ID"`
}
