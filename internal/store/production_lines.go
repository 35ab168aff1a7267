package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"factory-floor-backend/internal/model"
)

// ListProductionLines returns every line with its machines.
func (s *gormStore) ListProductionLines(ctx context.Context) ([]model.ProductionLine, error) {
	var lines []model.ProductionLine
	if err := s.db.WithContext(ctx).Preload("Machines").Order("name").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to list production lines: %w", err)
	}
	return lines, nil
}

// GetProductionLine returns one line with its machines.
func (s *gormStore) GetProductionLine(ctx context.Context, id string) (*model.ProductionLine, error) {
	var line model.ProductionLine
	err := s.db.WithContext(ctx).Preload("Machines").First(&line, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get production line %s: %w", id, err)
	}
	return &line, nil
}
