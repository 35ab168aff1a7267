package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"factory-floor-backend/internal/model"
)

// ListAnnotationsByMachine returns a machine's annotations with their
// creators, oldest first.
func (s *gormStore) ListAnnotationsByMachine(ctx context.Context, machineID string) ([]model.Annotation, error) {
	var annotations []model.Annotation
	err := s.db.WithContext(ctx).Preload("User").
		Where("machine_id = ?", machineID).
		Order("created_at").
		Find(&annotations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations for machine %s: %w", machineID, err)
	}
	return annotations, nil
}

// CreateAnnotation inserts an annotation, loads its creator and appends the
// ANNOTATION_CREATED audit row.
func (s *gormStore) CreateAnnotation(ctx context.Context, a *model.Annotation) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create annotation: %w", err)
	}
	if err := s.db.WithContext(ctx).Preload("User").First(a, "id = ?", a.ID).Error; err != nil {
		return fmt.Errorf("failed to reload annotation %s: %w", a.ID, err)
	}

	event := model.EventLog{
		Type:        model.EventAnnotationCreated,
		Description: fmt.Sprintf("Annotation of type %s created", a.Type),
		Metadata:    map[string]any{"annotationId": a.ID, "annotationType": a.Type},
		MachineID:   &a.MachineID,
		UserID:      &a.UserID,
	}
	if err := s.AppendEvent(ctx, &event); err != nil {
		return fmt.Errorf("annotation %s created but audit write failed: %w", a.ID, err)
	}
	return nil
}

// UpdateAnnotationContent replaces an annotation's content. No audit row is
// written for updates.
func (s *gormStore) UpdateAnnotationContent(ctx context.Context, id string, content map[string]any) (*model.Annotation, error) {
	var annotation model.Annotation
	err := s.db.WithContext(ctx).First(&annotation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get annotation %s: %w", id, err)
	}

	annotation.Content = content
	if err := s.db.WithContext(ctx).Save(&annotation).Error; err != nil {
		return nil, fmt.Errorf("failed to update annotation %s: %w", id, err)
	}
	if err := s.db.WithContext(ctx).Preload("User").First(&annotation, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload annotation %s: %w", id, err)
	}
	return &annotation, nil
}

// DeleteAnnotation removes an annotation and appends the ANNOTATION_DELETED
// audit row. The audit row references the annotation's machine and user as
// they were before deletion.
func (s *gormStore) DeleteAnnotation(ctx context.Context, id string) (*model.Annotation, error) {
	var annotation model.Annotation
	err := s.db.WithContext(ctx).Preload("User").First(&annotation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get annotation %s: %w", id, err)
	}

	if err := s.db.WithContext(ctx).Delete(&model.Annotation{}, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to delete annotation %s: %w", id, err)
	}

	machineID := annotation.MachineID
	userID := annotation.UserID
	event := model.EventLog{
		Type:        model.EventAnnotationDeleted,
		Description: fmt.Sprintf("Annotation of type %s deleted", annotation.Type),
		Metadata:    map[string]any{"annotationId": annotation.ID, "annotationType": annotation.Type},
		MachineID:   &machineID,
		UserID:      &userID,
	}
	if err := s.AppendEvent(ctx, &event); err != nil {
		return nil, fmt.Errorf("annotation %s deleted but audit write failed: %w", id, err)
	}
	return &annotation, nil
}
