package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"factory-floor-backend/internal/model"
)

// ListMachines returns every machine joined with its production line.
func (s *gormStore) ListMachines(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	if err := s.db.WithContext(ctx).Preload("ProductionLine").Order("name").Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	return machines, nil
}

// GetMachine returns one machine joined with its production line.
func (s *gormStore) GetMachine(ctx context.Context, id string) (*model.Machine, error) {
	var machine model.Machine
	err := s.db.WithContext(ctx).Preload("ProductionLine").First(&machine, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get machine %s: %w", id, err)
	}
	return &machine, nil
}

// CreateMachine inserts a machine. The referenced production line must exist.
func (s *gormStore) CreateMachine(ctx context.Context, m *model.Machine) error {
	var line model.ProductionLine
	err := s.db.WithContext(ctx).First(&line, "id = ?", m.ProductionLineID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check production line %s: %w", m.ProductionLineID, err)
	}

	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create machine: %w", err)
	}
	m.ProductionLine = &line
	return nil
}

// UpdateMachineStatus sets a machine's status and appends the audit row. The
// status update is read-back first so the audit metadata carries the
// pre-image status. The two writes are deliberately not wrapped in a
// transaction: the status update stands even if the audit insert fails.
func (s *gormStore) UpdateMachineStatus(ctx context.Context, id, status string) (*model.Machine, error) {
	machine, err := s.GetMachine(ctx, id)
	if err != nil {
		return nil, err
	}
	oldStatus := machine.Status

	if err := s.db.WithContext(ctx).Model(&model.Machine{ID: machine.ID}).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update status of machine %s: %w", id, err)
	}

	// Re-read so the returned row carries the timestamps the update just
	// touched, not the pre-image's.
	machine, err = s.GetMachine(ctx, id)
	if err != nil {
		return nil, err
	}

	event := model.EventLog{
		Type:        model.EventMachineStatusChange,
		Description: fmt.Sprintf("Machine %s status changed from %s to %s", machine.Name, oldStatus, status),
		Metadata: map[string]any{
			"oldStatus": oldStatus,
			"newStatus": status,
		},
		MachineID: &machine.ID,
	}
	if err := s.AppendEvent(ctx, &event); err != nil {
		return nil, fmt.Errorf("status of machine %s updated but audit write failed: %w", id, err)
	}

	return machine, nil
}
