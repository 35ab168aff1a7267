package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatMessage is an append-only operator chat entry scoped to a machine.
type ChatMessage struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Content   string    `gorm:"not null" json:"content"`
	MachineID string    `gorm:"size:36;index;not null" json:"machineId"`
	UserID    string    `gorm:"size:36;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`

	// Associations
	User *User `json:"user,omitempty"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
