package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lista/backend/internal/models"
	"github.com/lista/backend/internal/storage"
	"github.com/lista/backend/pkg/logger"
)

// ErrListItemNotFound is returned when an image operation references a list
// item that does not exist.
var ErrListItemNotFound = errors.New("list item not found")

// DecodeError reports which upload entry failed to decode, by batch
// position and by the display index the entry declared. The whole batch is
// aborted; blobs already written for earlier entries are not rolled back.
type DecodeError struct {
	Position int
	Index    int
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed decoding image at position %d (index %d): %v", e.Position, e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UploadEntry is one image of a bulk upload: a base64 payload plus the
// display index it should occupy.
type UploadEntry struct {
	URI      string `json:"uri"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Index    int    `json:"index"`
}

// ImageInfo is the listing projection of a stored image.
type ImageInfo struct {
	ID    uuid.UUID `json:"id"`
	URL   string    `json:"url"`
	Index int       `json:"index"`
}

const presignExpiry = 1 * time.Hour

// ImageService maintains the per-list-item ordered image collection: bulk
// append, listing, positional deletion and index compaction.
type ImageService struct {
	DB    *gorm.DB
	Store storage.BlobStore
}

func NewImageService(db *gorm.DB, store storage.BlobStore) *ImageService {
	return &ImageService{DB: db, Store: store}
}

// BulkUpload decodes every entry, writes each blob to storage and commits
// the image records as a single batch insert. A decode failure on any entry
// aborts the batch with a *DecodeError naming the entry.
func (s *ImageService) BulkUpload(ctx context.Context, listItemID uuid.UUID, entries []UploadEntry) ([]models.ListItemImage, error) {
	var item models.ListItem
	if err := s.DB.WithContext(ctx).First(&item, "id = ?", listItemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrListItemNotFound
		}
		return nil, err
	}

	records := make([]models.ListItemImage, 0, len(entries))
	for i, entry := range entries {
		data, err := base64.StdEncoding.DecodeString(stripDataURIPrefix(entry.URI))
		if err != nil {
			return nil, &DecodeError{Position: i, Index: entry.Index, Err: err}
		}

		mimeType := entry.MimeType
		objectName := fmt.Sprintf("list_item_images/%s/%s/%s",
			listItemID, uuid.New().String(), objectFileName(entry))

		if err := s.Store.Upload(ctx, objectName, bytes.NewReader(data), int64(len(data)), contentTypeFor(mimeType)); err != nil {
			return nil, err
		}

		records = append(records, models.ListItemImage{
			ListItemID:  listItemID,
			StoragePath: objectName,
			Index:       entry.Index,
			MimeType:    mimeType,
		})
	}

	if err := s.DB.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListFor returns all images of a list item as {id, url, index} tuples. A
// list item with no images yields an empty slice, not an error.
func (s *ImageService) ListFor(ctx context.Context, listItemID uuid.UUID) ([]ImageInfo, error) {
	var images []models.ListItemImage
	if err := s.DB.WithContext(ctx).
		Where("list_item_id = ?", listItemID).
		Find(&images).Error; err != nil {
		return nil, err
	}

	infos := make([]ImageInfo, 0, len(images))
	for _, image := range images {
		infos = append(infos, ImageInfo{
			ID:    image.ID,
			URL:   s.urlFor(ctx, image.StoragePath),
			Index: image.Index,
		})
	}
	return infos, nil
}

// ApplyEdits removes every image whose index is in deletedIndices, then
// decrements the index of every image whose index is in updatedIndices.
// Deletion runs before update. The caller is responsible for supplying a
// consistent edit set; indices are not checked for duplicates or negatives.
func (s *ImageService) ApplyEdits(ctx context.Context, listItemID uuid.UUID, deletedIndices, updatedIndices []int) error {
	for _, index := range deletedIndices {
		var doomed []models.ListItemImage
		if err := s.DB.WithContext(ctx).
			Where("list_item_id = ? AND idx = ?", listItemID, index).
			Find(&doomed).Error; err != nil {
			return err
		}

		for _, image := range doomed {
			if err := s.DB.WithContext(ctx).Delete(&image).Error; err != nil {
				return err
			}
			if s.Store != nil {
				// Record is gone either way; a stale blob is tolerable.
				if err := s.Store.Delete(ctx, image.StoragePath); err != nil {
					logger.Error("image_blob_delete_failed", err, map[string]interface{}{
						"image_id":     image.ID.String(),
						"storage_path": image.StoragePath,
					})
				}
			}
		}
	}

	for _, index := range updatedIndices {
		var shifting []models.ListItemImage
		if err := s.DB.WithContext(ctx).
			Where("list_item_id = ? AND idx = ?", listItemID, index).
			Find(&shifting).Error; err != nil {
			return err
		}

		for _, image := range shifting {
			image.Index--
			if err := s.DB.WithContext(ctx).Model(&models.ListItemImage{}).
				Where("id = ?", image.ID).
				Update("idx", image.Index).Error; err != nil {
				// Partial compaction is non-fatal; skip and continue.
				logger.Error("image_index_update_failed", err, map[string]interface{}{
					"image_id":  image.ID.String(),
					"new_index": image.Index,
				})
			}
		}
	}

	return nil
}

func (s *ImageService) urlFor(ctx context.Context, storagePath string) string {
	if s.Store == nil {
		return storagePath
	}
	url, err := s.Store.PresignedGetURL(ctx, storagePath, presignExpiry)
	if err != nil {
		logger.Error("image_presign_failed", err, map[string]interface{}{
			"storage_path": storagePath,
		})
		return storagePath
	}
	return url
}

func objectFileName(entry UploadEntry) string {
	name := strings.TrimSpace(entry.FileName)
	if name == "" {
		name = fmt.Sprintf("image_%d", entry.Index)
	}

	extension := "jpeg"
	if parts := strings.SplitN(entry.MimeType, "/", 2); len(parts) == 2 && parts[1] != "" {
		extension = parts[1]
	}
	return fmt.Sprintf("%s.%s", name, extension)
}

func contentTypeFor(mimeType string) string {
	if strings.TrimSpace(mimeType) == "" {
		return "image/jpeg"
	}
	return mimeType
}

// stripDataURIPrefix drops a leading "data:image/png;base64," style prefix
// so both raw base64 and data URIs decode.
func stripDataURIPrefix(uri string) string {
	if strings.HasPrefix(uri, "data:") {
		if idx := strings.Index(uri, ","); idx >= 0 {
			return uri[idx+1:]
		}
	}
	return uri
}
