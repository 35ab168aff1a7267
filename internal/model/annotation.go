package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Annotation shapes. The content schema varies by type and is opaque to the
// server; only "is an object" is validated at the boundary.
const (
	AnnotationLine      = "LINE"
	AnnotationRectangle = "RECTANGLE"
	AnnotationText      = "TEXT"
	AnnotationCircle    = "CIRCLE"
	AnnotationArrow     = "ARROW"
)

// AnnotationTypes lists every valid annotation type.
var AnnotationTypes = []string{AnnotationLine, AnnotationRectangle, AnnotationText, AnnotationCircle, AnnotationArrow}

// ValidAnnotationType reports whether t is a recognized annotation type.
func ValidAnnotationType(t string) bool {
	for _, v := range AnnotationTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Annotation is a free-form visual mark on a machine schematic.
type Annotation struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Type      string         `gorm:"size:16;not null" json:"type"`
	Content   map[string]any `gorm:"serializer:json" json:"content"`
	MachineID string         `gorm:"size:36;index;not null" json:"machineId"`
	UserID    string         `gorm:"size:36;not null" json:"userId"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`

	// Associations
	User *User `json:"user,omitempty"`
}

func (a *Annotation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
