package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"factory-floor-backend/internal/model"
)

// ListDowntimes returns all downtimes, most recent start first.
func (s *gormStore) ListDowntimes(ctx context.Context) ([]model.Downtime, error) {
	var downtimes []model.Downtime
	if err := s.db.WithContext(ctx).Preload("User").Order("start_time DESC").Find(&downtimes).Error; err != nil {
		return nil, fmt.Errorf("failed to list downtimes: %w", err)
	}
	return downtimes, nil
}

// ListDowntimesByMachine returns one machine's downtimes, most recent start
// first.
func (s *gormStore) ListDowntimesByMachine(ctx context.Context, machineID string) ([]model.Downtime, error) {
	var downtimes []model.Downtime
	err := s.db.WithContext(ctx).Preload("User").
		Where("machine_id = ?", machineID).
		Order("start_time DESC").
		Find(&downtimes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list downtimes for machine %s: %w", machineID, err)
	}
	return downtimes, nil
}

// CreateDowntime inserts a downtime. When an end time is present the
// duration is computed here; any caller-supplied duration is discarded.
func (s *gormStore) CreateDowntime(ctx context.Context, d *model.Downtime) error {
	d.DurationMinutes = nil
	if d.EndTime != nil {
		if d.EndTime.Before(d.StartTime) {
			return ErrEndBeforeStart
		}
		minutes := model.DurationBetween(d.StartTime, *d.EndTime)
		d.DurationMinutes = &minutes
	}

	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to create downtime: %w", err)
	}
	if err := s.db.WithContext(ctx).Preload("User").First(d, "id = ?", d.ID).Error; err != nil {
		return fmt.Errorf("failed to reload downtime %s: %w", d.ID, err)
	}
	return nil
}

// CloseDowntime sets the end time of an open downtime and recomputes its
// duration. Closing an already-closed downtime fails rather than silently
// overwriting.
func (s *gormStore) CloseDowntime(ctx context.Context, id string, end time.Time) (*model.Downtime, error) {
	var downtime model.Downtime
	err := s.db.WithContext(ctx).First(&downtime, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get downtime %s: %w", id, err)
	}

	if downtime.EndTime != nil {
		return nil, ErrDowntimeClosed
	}
	if end.Before(downtime.StartTime) {
		return nil, ErrEndBeforeStart
	}

	minutes := model.DurationBetween(downtime.StartTime, end)
	downtime.EndTime = &end
	downtime.DurationMinutes = &minutes
	if err := s.db.WithContext(ctx).Save(&downtime).Error; err != nil {
		return nil, fmt.Errorf("failed to close downtime %s: %w", id, err)
	}
	if err := s.db.WithContext(ctx).Preload("User").First(&downtime, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload downtime %s: %w", id, err)
	}
	return &downtime, nil
}
