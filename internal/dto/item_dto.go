package dto

import "github.com/campusfind/lostfound-backend/internal/models"

// CreateItemRequest is bound from the multipart form of an item post.
// The image file itself travels under the "image" field and is handled
// by the upload component, not the body parser.
type CreateItemRequest struct {
	Name        string `json:"name" form:"name"`
	Category    string `json:"category" form:"category"`
	Description string `json:"description" form:"description"`
	Location    string `json:"location" form:"location"`
	ItemType    string `json:"itemType" form:"itemType"`
}

// UpdateItemRequest carries a partial edit: only non-nil fields change.
// The handler fills it from multipart form presence (or a JSON body) so an
// omitted field is distinguishable from an empty one.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	ItemType    *string `json:"itemType"`
	Image       *string `json:"-"`
}

// ListItemsQuery captures the browse/search/filter parameters.
type ListItemsQuery struct {
	Page      int
	Limit     int
	Search    string
	Category  string
	ItemType  string
	SortBy    string
	SortOrder string
}

type ItemListResponse struct {
	Items      []models.Item `json:"items"`
	Page       int           `json:"page"`
	TotalPages int64         `json:"totalPages"`
	Total      int64         `json:"total"`
}

type FlaggedItemsResponse struct {
	Items []models.Item `json:"items"`
}
