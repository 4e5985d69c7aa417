package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

// ValidClaimStatus reports whether s is a known adjudication state.
func ValidClaimStatus(s string) bool {
	return s == ClaimStatusPending || s == ClaimStatusApproved || s == ClaimStatusRejected
}

// Claim is a user's assertion of interest in an item. At most one pending
// claim per (item, claimer) pair, enforced by a pre-check at creation.
type Claim struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Item      Item      `gorm:"foreignKey:ItemID" json:"item"`
	ClaimerID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Claimer   User      `gorm:"foreignKey:ClaimerID" json:"claimer"`
	Message   string    `gorm:"type:text" json:"message,omitempty"`
	Status    string    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Claim) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
