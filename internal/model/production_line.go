package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductionLine groups machines on the factory floor. Lines are never
// deleted, only deactivated.
type ProductionLine struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:512" json:"description"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Associations
	Machines []Machine `gorm:"foreignKey:ProductionLineID" json:"machines,omitempty"`
}

func (p *ProductionLine) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
