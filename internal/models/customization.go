package models

import "github.com/google/uuid"

// Customization stores per-user UI preferences. One row per user by
// upsert convention, not by schema constraint.
type Customization struct {
	BaseModel
	UserID            uuid.UUID `json:"user" gorm:"type:uuid;not null;index"`
	BackgroundImageID string    `json:"background_image_id" gorm:"type:varchar(20);not null;default:''"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID"`
}
