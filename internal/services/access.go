package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lista/backend/internal/models"
)

// AccessService answers "may user U touch list item L" and produces the set
// of list items visible to a user: items they own plus items shared with
// them through a GroupShare row.
type AccessService struct {
	DB *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{DB: db}
}

// VisibleItems returns every list item the user owns or that has been shared
// with them. Ordering follows the underlying store.
func (a *AccessService) VisibleItems(ctx context.Context, userID uuid.UUID) ([]models.ListItem, error) {
	sharedIDs := a.DB.WithContext(ctx).
		Model(&models.GroupShare{}).
		Select("list_item_id").
		Where("user_id = ?", userID)

	var items []models.ListItem
	err := a.DB.WithContext(ctx).
		Where("owner_id = ?", userID).
		Or("id IN (?)", sharedIDs).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CanModify reports whether the user owns the list item or holds any
// GroupShare on it. The permission tier is not consulted here; authorization
// is ownership-or-membership only.
func (a *AccessService) CanModify(ctx context.Context, userID, listItemID uuid.UUID) (bool, error) {
	var item models.ListItem
	if err := a.DB.WithContext(ctx).First(&item, "id = ?", listItemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}

	if item.OwnerID == userID {
		return true, nil
	}

	var count int64
	err := a.DB.WithContext(ctx).
		Model(&models.GroupShare{}).
		Where("user_id = ? AND list_item_id = ?", userID, listItemID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PermissionTier returns the stored permission of the share row for
// (user, list item), or gorm.ErrRecordNotFound when no share exists.
func (a *AccessService) PermissionTier(ctx context.Context, userID, listItemID uuid.UUID) (models.GroupSharePermission, error) {
	var share models.GroupShare
	err := a.DB.WithContext(ctx).
		Where("user_id = ? AND list_item_id = ?", userID, listItemID).
		First(&share).Error
	if err != nil {
		return "", err
	}
	return share.PermissionType, nil
}
