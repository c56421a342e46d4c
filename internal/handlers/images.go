package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lista/backend/internal/middleware"
	"github.com/lista/backend/internal/services"
	"github.com/lista/backend/pkg/logger"
	"github.com/lista/backend/pkg/utils"
)

type ImagesHandler struct {
	Images *services.ImageService
}

func NewImagesHandler(images *services.ImageService) *ImagesHandler {
	return &ImagesHandler{Images: images}
}

// Upload handles the multipart bulk upload: a list_item field plus repeated
// images fields, each a JSON document {uri, fileName, mimeType, index}.
func (h *ImagesHandler) Upload(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "multipart form is required")
	}

	listItemRaw := firstFormValue(form.Value, "list_item")
	if listItemRaw == "" {
		return utils.Error(c, fiber.StatusBadRequest, "list_item is required.")
	}

	imagesRaw := form.Value["images"]
	if len(imagesRaw) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "images array is required.")
	}

	listItemID, err := parseUUID(listItemRaw)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid list_item")
	}

	entries := make([]services.UploadEntry, 0, len(imagesRaw))
	for i, raw := range imagesRaw {
		var entry services.UploadEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return utils.Error(c, fiber.StatusBadRequest,
				"invalid image payload at position "+strconv.Itoa(i))
		}
		entries = append(entries, entry)
	}

	records, err := h.Images.BulkUpload(c.Context(), listItemID, entries)
	if err != nil {
		var decodeErr *services.DecodeError
		switch {
		case errors.Is(err, services.ErrListItemNotFound):
			return utils.Error(c, fiber.StatusNotFound, "List item not found.")
		case errors.As(err, &decodeErr):
			return utils.Error(c, fiber.StatusBadRequest, decodeErr.Error())
		default:
			logger.ErrorWithUser(currentUser.ID.String(), "image_upload_failed", err, map[string]interface{}{
				"list_item_id": listItemID.String(),
			})
			return utils.Error(c, fiber.StatusInternalServerError, "failed uploading images")
		}
	}

	logger.InfoWithUser(currentUser.ID.String(), "images_uploaded", map[string]interface{}{
		"list_item_id": listItemID.String(),
		"count":        len(records),
	})

	return utils.Success(c, fiber.StatusCreated, fiber.Map{
		"status": "Images uploaded successfully",
	})
}

func (h *ImagesHandler) ListForListItem(c *fiber.Ctx) error {
	listItemID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid list item id")
	}

	images, err := h.Images.ListFor(c.Context(), listItemID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing images")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"images": images,
	})
}

type updateImagesRequest struct {
	ListItemID         string `json:"list_item_id" form:"list_item_id"`
	UpdatedImagesIndex []int  `json:"updatedImagesIndex" form:"updatedImagesIndex[]"`
	DeletedImagesIndex []int  `json:"deletedImagesIndex" form:"deletedImagesIndex[]"`
}

// UpdateImages applies a client-computed edit set: deletions first, then
// index decrements for the listed positions.
func (h *ImagesHandler) UpdateImages(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateImagesRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.ListItemID) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "list_item_id is required")
	}

	listItemID, err := parseUUID(req.ListItemID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid list_item_id")
	}

	if err := h.Images.ApplyEdits(c.Context(), listItemID, req.DeletedImagesIndex, req.UpdatedImagesIndex); err != nil {
		logger.ErrorWithUser(currentUser.ID.String(), "image_edit_failed", err, map[string]interface{}{
			"list_item_id": listItemID.String(),
		})
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Images updated and deleted successfully",
	})
}

func firstFormValue(values map[string][]string, key string) string {
	if entries, ok := values[key]; ok && len(entries) > 0 {
		return strings.TrimSpace(entries[0])
	}
	return ""
}
