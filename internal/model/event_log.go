package model

import "time"

// Event types recorded in the audit trail.
const (
	EventMachineStatusChange = "MACHINE_STATUS_CHANGE"
	EventAnnotationCreated   = "ANNOTATION_CREATED"
	EventAnnotationUpdated   = "ANNOTATION_UPDATED"
	EventAnnotationDeleted   = "ANNOTATION_DELETED"
	EventMessageSent         = "MESSAGE_SENT"
	EventUserConnected       = "USER_CONNECTED"
	EventUserDisconnected    = "USER_DISCONNECTED"
)

// EventLog is a write-only audit row. The application never reads these back;
// they exist for reporting.
type EventLog struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Type        string         `gorm:"size:32;not null;index" json:"type"`
	Description string         `gorm:"size:512" json:"description"`
	Metadata    map[string]any `gorm:"serializer:json" json:"metadata"`
	MachineID   *string        `gorm:"size:36;index" json:"machineId,omitempty"`
	UserID      *string        `gorm:"size:36" json:"userId,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
