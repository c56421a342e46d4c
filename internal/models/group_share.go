package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GroupShareRole string

const (
	GroupShareRoleMember GroupShareRole = "member"
	GroupShareRoleAdmin  GroupShareRole = "admin"
)

type GroupSharePermission string

const (
	GroupSharePermissionReadOnly   GroupSharePermission = "read_only"
	GroupSharePermissionFullAccess GroupSharePermission = "full_access"
)

// GroupShare grants a user access to another user's list item. At most one
// row may exist per (user, list item) pair.
type GroupShare struct {
	BaseModel
	UserID         uuid.UUID            `json:"user" gorm:"type:uuid;not null;index;uniqueIndex:idx_user_list_item"`
	ListItemID     uuid.UUID            `json:"list_item" gorm:"type:uuid;not null;index;uniqueIndex:idx_user_list_item"`
	Role           GroupShareRole       `json:"role" gorm:"type:varchar(10);not null;default:'member'"`
	PermissionType GroupSharePermission `json:"permission_type" gorm:"type:varchar(20);not null;default:'read_only'"`
	JoinedAt       time.Time            `json:"date_joined" gorm:"not null"`

	User     User     `json:"-" gorm:"foreignKey:UserID;references:ID"`
	ListItem ListItem `json:"-" gorm:"foreignKey:ListItemID;references:ID"`
}

func (g *GroupShare) BeforeCreate(tx *gorm.DB) error {
	if err := g.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if g.JoinedAt.IsZero() {
		g.JoinedAt = time.Now().UTC()
	}
	return nil
}

func (GroupShare) TableName() string {
	return "group_shares"
}

func IsValidGroupShareRole(value string) bool {
	switch GroupShareRole(value) {
	case GroupShareRoleMember, GroupShareRoleAdmin:
		return true
	default:
		return false
	}
}

func IsValidGroupSharePermission(value string) bool {
	switch GroupSharePermission(value) {
	case GroupSharePermissionReadOnly, GroupSharePermissionFullAccess:
		return true
	default:
		return false
	}
}
