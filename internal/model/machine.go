package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Machine statuses. Status is the only frequently-mutated machine field;
// every mutation produces one EventLog row.
const (
	StatusNormal      = "NORMAL"
	StatusWarning     = "WARNING"
	StatusFailure     = "FAILURE"
	StatusMaintenance = "MAINTENANCE"
)

// MachineStatuses lists every valid machine status.
var MachineStatuses = []string{StatusNormal, StatusWarning, StatusFailure, StatusMaintenance}

// ValidMachineStatus reports whether s is a recognized machine status.
func ValidMachineStatus(s string) bool {
	for _, v := range MachineStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Machine represents a single machine on a production line.
type Machine struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	Name             string    `gorm:"size:128;not null" json:"name"`
	Code             string    `gorm:"uniqueIndex;size:64;not null" json:"code"`
	Status           string    `gorm:"size:16;not null;default:NORMAL" json:"status"`
	SchemaImageURL   string    `gorm:"size:512" json:"schemaImageUrl,omitempty"`
	ProductionLineID string    `gorm:"size:36;index;not null" json:"productionLineId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	// Associations
	ProductionLine *ProductionLine `json:"productionLine,omitempty"`
}

func (m *Machine) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = StatusNormal
	}
	return nil
}
