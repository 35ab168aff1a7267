package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles. Only ADMIN and ENGINEER may manage users or add machines.
const (
	RoleOperator    = "OPERATOR"
	RoleMaintenance = "MAINTENANCE"
	RoleEngineer    = "ENGINEER"
	RoleAdmin       = "ADMIN"
)

// User represents an operator account. The username is immutable once
// created; the password hash never leaves the server.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	DisplayName  string    `gorm:"size:128;not null" json:"displayName"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"size:16;not null" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
