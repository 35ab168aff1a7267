package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Downtime records an outage window for a machine. DurationMinutes is always
// derived server-side from the start and end times, never trusted from the
// client, and is only set once the downtime has an end time.
type Downtime struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	MachineID       string     `gorm:"size:36;index;not null" json:"machineId"`
	Reason          string     `gorm:"size:128;not null" json:"reason"`
	StartTime       time.Time  `gorm:"not null" json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`
	Notes           string     `gorm:"size:1024" json:"notes,omitempty"`
	UserID          string     `gorm:"size:36;not null" json:"userId"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	// Associations
	User *User `json:"user,omitempty"`
}

func (d *Downtime) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// DurationBetween returns the whole minutes between start and end, rounded
// down.
func DurationBetween(start, end time.Time) int {
	return int(end.Sub(start) / time.Minute)
}
