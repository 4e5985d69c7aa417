package handlers

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/campusfind/lostfound-backend/internal/config"
	"github.com/campusfind/lostfound-backend/internal/dto"
	"github.com/campusfind/lostfound-backend/internal/middleware"
	"github.com/campusfind/lostfound-backend/internal/services"
	"github.com/campusfind/lostfound-backend/internal/upload"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ItemHandler struct {
	itemService *services.ItemService
	cfg         *config.Config
}

func NewItemHandler(itemService *services.ItemService, cfg *config.Config) *ItemHandler {
	return &ItemHandler{itemService: itemService, cfg: cfg}
}

func (h *ItemHandler) Create(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Unauthorized"})
	}

	var req dto.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid request body"})
	}
	if req.Name == "" || req.Category == "" || req.Description == "" || req.Location == "" || req.ItemType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "All fields are required"})
	}

	imagePath, err := h.saveUpload(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: err.Error()})
	}

	item, err := h.itemService.Create(user, &req, imagePath)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *ItemHandler) List(c *fiber.Ctx) error {
	q := dto.ListItemsQuery{
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 10),
		Search:    c.Query("search"),
		Category:  c.Query("category"),
		ItemType:  c.Query("itemType"),
		SortBy:    c.Query("sortBy", "createdAt"),
		SortOrder: c.Query("sortOrder", "desc"),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 10
	}

	items, total, err := h.itemService.List(&q)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Failed to fetch items"})
	}

	return c.JSON(dto.ItemListResponse{
		Items:      items,
		Page:       q.Page,
		TotalPages: totalPages(total, q.Limit),
		Total:      total,
	})
}

func (h *ItemHandler) ListFlagged(c *fiber.Ctx) error {
	items, err := h.itemService.ListFlagged()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Failed to fetch items"})
	}
	return c.JSON(dto.FlaggedItemsResponse{Items: items})
}

func (h *ItemHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid item ID"})
	}

	item, err := h.itemService.Get(id)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(item)
}

func (h *ItemHandler) Update(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Unauthorized"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid item ID"})
	}

	var req dto.UpdateItemRequest
	if form, err := c.MultipartForm(); err == nil {
		req.Name = formValue(form, "name")
		req.Category = formValue(form, "category")
		req.Description = formValue(form, "description")
		req.Location = formValue(form, "location")
		req.ItemType = formValue(form, "itemType")
	} else if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid request body"})
	}

	imagePath, err := h.saveUpload(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: err.Error()})
	}
	if imagePath != "" {
		req.Image = &imagePath
	}

	item, err := h.itemService.Update(user, id, &req)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(item)
}

func (h *ItemHandler) Flag(c *fiber.Ctx) error {
	return h.setFlagged(c, true)
}

func (h *ItemHandler) Unflag(c *fiber.Ctx) error {
	return h.setFlagged(c, false)
}

func (h *ItemHandler) Remove(c *fiber.Ctx) error {
	return h.setRemoved(c, true)
}

func (h *ItemHandler) Restore(c *fiber.Ctx) error {
	return h.setRemoved(c, false)
}

func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Unauthorized"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid item ID"})
	}

	if err := h.itemService.Delete(user, id); err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Deleted"})
}

func (h *ItemHandler) setFlagged(c *fiber.Ctx, flagged bool) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid item ID"})
	}

	item, err := h.itemService.SetFlagged(id, flagged)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(item)
}

func (h *ItemHandler) setRemoved(c *fiber.Ctx, removed bool) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid item ID"})
	}

	item, err := h.itemService.SetRemoved(id, removed)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(item)
}

// saveUpload stores the optional photo attached to an item request and
// returns its public path, or "" when no file was sent.
func (h *ItemHandler) saveUpload(c *fiber.Ctx) (string, error) {
	fh, err := c.FormFile(upload.FieldName)
	if err != nil {
		return "", nil
	}
	return upload.SaveImage(fh, h.cfg.UploadDir)
}

func (h *ItemHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrInvalidItemType), errors.Is(err, upload.ErrUnsupportedType):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Server error"})
	}
}

func formValue(form *multipart.Form, key string) *string {
	if vals, ok := form.Value[key]; ok && len(vals) > 0 {
		v := strings.TrimSpace(vals[0])
		return &v
	}
	return nil
}

func totalPages(total int64, limit int) int64 {
	if limit < 1 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
