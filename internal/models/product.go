package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is the superseded catalog schema from an earlier iteration of the
// board. The table is kept in the migration set so existing rows survive
// upgrades, but no routes serve it anymore.
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Category  string    `gorm:"size:100" json:"category"`
	Price     float64   `gorm:"not null" json:"price"`
	InStock   bool      `gorm:"default:true" json:"inStock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
