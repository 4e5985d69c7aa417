package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// ValidItemType reports whether t is one of the two allowed post types.
func ValidItemType(t string) bool {
	return t == ItemTypeLost || t == ItemTypeFound
}

// Item is a lost-or-found listing. IsRemoved hides it from listings only;
// removed items stay fetchable by id until hard-deleted.
type Item struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Category    string    `gorm:"size:100;not null;index" json:"category"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Location    string    `gorm:"size:255;not null" json:"location"`
	ItemType    string    `gorm:"size:10;not null;index" json:"itemType"`
	Image       string    `gorm:"size:512" json:"image,omitempty"`
	PostedByID  uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	PostedBy    User      `gorm:"foreignKey:PostedByID" json:"postedBy"`
	IsFlagged   bool      `gorm:"default:false;index" json:"isFlagged"`
	IsRemoved   bool      `gorm:"default:false;index" json:"isRemoved"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Item) TableName() string {
	return "lostfounditems"
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
