package services

import (
	"errors"
	"strings"

	"github.com/campusfind/lostfound-backend/internal/dto"
	"github.com/campusfind/lostfound-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("Not found")
	ErrForbidden       = errors.New("Not authorized")
	ErrInvalidItemType = errors.New("itemType must be 'lost' or 'found'")
)

// sortColumns whitelists the sortable listing fields against raw ORDER BY
// injection from the query string.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"category":  "category",
	"location":  "location",
	"itemType":  "item_type",
}

type ItemService struct {
	db *gorm.DB
}

func NewItemService(db *gorm.DB) *ItemService {
	return &ItemService{db: db}
}

// Create persists a new listing owned by the poster. The image path, if
// any, has already been written to disk by the upload component.
func (s *ItemService) Create(poster *models.User, req *dto.CreateItemRequest, imagePath string) (*models.Item, error) {
	if !models.ValidItemType(req.ItemType) {
		return nil, ErrInvalidItemType
	}

	item := models.Item{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Location:    req.Location,
		ItemType:    req.ItemType,
		Image:       imagePath,
		PostedByID:  poster.ID,
	}

	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}

	return s.get(item.ID)
}

// List returns a page of non-removed items matching the query filters,
// with the total count of matches for pagination.
func (s *ItemService) List(q *dto.ListItemsQuery) ([]models.Item, int64, error) {
	query := s.db.Model(&models.Item{}).Where("is_removed = ?", false)

	if q.Search != "" {
		needle := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?",
			needle, needle, needle,
		)
	}
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.ItemType != "" {
		query = query.Where("item_type = ?", q.ItemType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		direction = "ASC"
	}

	var items []models.Item
	err := query.Preload("PostedBy").
		Order(column + " " + direction).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// ListFlagged returns every non-removed item awaiting moderator review,
// newest first.
func (s *ItemService) ListFlagged() ([]models.Item, error) {
	var items []models.Item
	err := s.db.Preload("PostedBy").
		Where("is_flagged = ? AND is_removed = ?", true, false).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// Get fetches a single item by id. Removed items stay fetchable here; they
// are only hidden from listings.
func (s *ItemService) Get(id uuid.UUID) (*models.Item, error) {
	return s.get(id)
}

// Update applies a partial edit. Only the owner or an admin may edit.
func (s *ItemService) Update(caller *models.User, id uuid.UUID, req *dto.UpdateItemRequest) (*models.Item, error) {
	item, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if item.PostedByID != caller.ID && !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.ItemType != nil {
		if !models.ValidItemType(*req.ItemType) {
			return nil, ErrInvalidItemType
		}
		updates["item_type"] = *req.ItemType
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Item{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.get(id)
}

// SetFlagged toggles the moderation flag. Idempotent.
func (s *ItemService) SetFlagged(id uuid.UUID, flagged bool) (*models.Item, error) {
	return s.setBool(id, "is_flagged", flagged)
}

// SetRemoved toggles the listing soft-delete. Idempotent.
func (s *ItemService) SetRemoved(id uuid.UUID, removed bool) (*models.Item, error) {
	return s.setBool(id, "is_removed", removed)
}

// Delete hard-deletes an item. Only the owner or an admin may delete.
func (s *ItemService) Delete(caller *models.User, id uuid.UUID) error {
	item, err := s.get(id)
	if err != nil {
		return err
	}
	if item.PostedByID != caller.ID && !caller.IsAdmin() {
		return ErrForbidden
	}
	return s.db.Delete(&models.Item{}, "id = ?", id).Error
}

func (s *ItemService) setBool(id uuid.UUID, column string, value bool) (*models.Item, error) {
	if _, err := s.get(id); err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Item{}).Where("id = ?", id).Update(column, value).Error; err != nil {
		return nil, err
	}
	return s.get(id)
}

func (s *ItemService) get(id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := s.db.Preload("PostedBy").First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}
