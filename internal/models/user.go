package models

import "time"

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email        string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"type:text;not null"`
	FirstName    string     `json:"first_name" gorm:"type:varchar(100);not null;default:''"`
	LastName     string     `json:"last_name" gorm:"type:varchar(100);not null;default:''"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`

	OwnedLists     []ListItem      `json:"-" gorm:"foreignKey:OwnerID"`
	GroupShares    []GroupShare    `json:"-" gorm:"foreignKey:UserID"`
	Customizations []Customization `json:"-" gorm:"foreignKey:UserID"`
}
