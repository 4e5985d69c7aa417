package dto

import (
	"github.com/campusfind/lostfound-backend/internal/models"
	"github.com/google/uuid"
)

type CreateClaimRequest struct {
	ItemID  uuid.UUID `json:"itemId"`
	Message string    `json:"message"`
}

// UpdateClaimRequest distinguishes absent fields from empty ones: a claimer
// may clear their message, and only an admin may touch status at all.
type UpdateClaimRequest struct {
	Message *string `json:"message"`
	Status  *string `json:"status"`
}

type ListClaimsQuery struct {
	Page   int
	Limit  int
	Status string
	ItemID string
}

type ClaimListResponse struct {
	Claims     []models.Claim `json:"claims"`
	Page       int            `json:"page"`
	TotalPages int64          `json:"totalPages"`
	Total      int64          `json:"total"`
}
