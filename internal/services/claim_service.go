package services

import (
	"errors"

	"github.com/campusfind/lostfound-backend/internal/dto"
	"github.com/campusfind/lostfound-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDuplicateClaim     = errors.New("A pending claim already exists for this item")
	ErrClaimNotEditable   = errors.New("Only pending claims can be edited by owner")
	ErrStatusAdminOnly    = errors.New("Only admin can change status")
	ErrInvalidClaimStatus = errors.New("status must be 'pending', 'approved' or 'rejected'")
)

type ClaimService struct {
	db *gorm.DB
}

func NewClaimService(db *gorm.DB) *ClaimService {
	return &ClaimService{db: db}
}

// Create opens a pending claim on an item. The duplicate-pending check is a
// best-effort read-then-write; concurrent requests may still slip a
// duplicate through, which admins resolve during adjudication.
func (s *ClaimService) Create(claimer *models.User, req *dto.CreateClaimRequest) (*models.Claim, error) {
	var item models.Item
	if err := s.db.First(&item, "id = ?", req.ItemID).Error; err != nil || item.IsRemoved {
		return nil, ErrNotFound
	}

	var existing models.Claim
	err := s.db.Where("item_id = ? AND claimer_id = ? AND status = ?",
		req.ItemID, claimer.ID, models.ClaimStatusPending).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateClaim
	}

	claim := models.Claim{
		ItemID:    req.ItemID,
		ClaimerID: claimer.ID,
		Message:   req.Message,
		Status:    models.ClaimStatusPending,
	}
	if err := s.db.Create(&claim).Error; err != nil {
		return nil, err
	}

	return s.get(claim.ID)
}

// List pages through claims. Non-admin callers only ever see their own:
// the claimer filter is overridden, not defaulted.
func (s *ClaimService) List(caller *models.User, q *dto.ListClaimsQuery) ([]models.Claim, int64, error) {
	query := s.db.Model(&models.Claim{})

	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.ItemID != "" {
		query = query.Where("item_id = ?", q.ItemID)
	}
	if !caller.IsAdmin() {
		query = query.Where("claimer_id = ?", caller.ID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var claims []models.Claim
	err := query.Preload("Item").Preload("Item.PostedBy").Preload("Claimer").
		Order("created_at DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&claims).Error
	if err != nil {
		return nil, 0, err
	}

	return claims, total, nil
}

// Get fetches a single claim, visible to its claimer or an admin.
func (s *ClaimService) Get(caller *models.User, id uuid.UUID) (*models.Claim, error) {
	claim, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if claim.ClaimerID != caller.ID && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return claim, nil
}

// Update lets the claimer edit the message while the claim is still pending
// and lets an admin set the status to any known value.
func (s *ClaimService) Update(caller *models.User, id uuid.UUID, req *dto.UpdateClaimRequest) (*models.Claim, error) {
	claim, err := s.get(id)
	if err != nil {
		return nil, err
	}

	isOwner := claim.ClaimerID == caller.ID
	if !isOwner && !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	updates := map[string]interface{}{}
	if req.Message != nil {
		if isOwner && claim.Status != models.ClaimStatusPending {
			return nil, ErrClaimNotEditable
		}
		updates["message"] = *req.Message
	}
	if req.Status != nil {
		if !caller.IsAdmin() {
			return nil, ErrStatusAdminOnly
		}
		if !models.ValidClaimStatus(*req.Status) {
			return nil, ErrInvalidClaimStatus
		}
		updates["status"] = *req.Status
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Claim{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.get(id)
}

// SetStatus is the dedicated approve/reject transition. There is no guard
// on the current status: re-adjudicating an already decided claim succeeds.
func (s *ClaimService) SetStatus(id uuid.UUID, status string) (*models.Claim, error) {
	if _, err := s.get(id); err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Claim{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return nil, err
	}
	return s.get(id)
}

// Delete removes a claim, allowed for its claimer or an admin.
func (s *ClaimService) Delete(caller *models.User, id uuid.UUID) error {
	claim, err := s.get(id)
	if err != nil {
		return err
	}
	if claim.ClaimerID != caller.ID && !caller.IsAdmin() {
		return ErrForbidden
	}
	return s.db.Delete(&models.Claim{}, "id = ?", id).Error
}

func (s *ClaimService) get(id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	err := s.db.Preload("Item").Preload("Item.PostedBy").Preload("Claimer").
		First(&claim, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &claim, nil
}
