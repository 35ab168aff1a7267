package store

import (
	"context"
	"fmt"

	"factory-floor-backend/internal/model"
)

// DefaultChatHistoryLimit bounds chat history replies when the caller does
// not supply a limit.
const DefaultChatHistoryLimit = 50

// CreateChatMessage inserts a message, loads its author and appends the
// MESSAGE_SENT audit row.
func (s *gormStore) CreateChatMessage(ctx context.Context, m *model.ChatMessage) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	if err := s.db.WithContext(ctx).Preload("User").First(m, "id = ?", m.ID).Error; err != nil {
		return fmt.Errorf("failed to reload chat message %s: %w", m.ID, err)
	}

	event := model.EventLog{
		Type:      model.EventMessageSent,
		Metadata:  map[string]any{"messageId": m.ID},
		MachineID: &m.MachineID,
		UserID:    &m.UserID,
	}
	if err := s.AppendEvent(ctx, &event); err != nil {
		return fmt.Errorf("chat message %s created but audit write failed: %w", m.ID, err)
	}
	return nil
}

// ListChatByMachine returns the latest messages for a machine in
// chronological order. The newest `limit` rows are selected and then
// reversed for display.
func (s *gormStore) ListChatByMachine(ctx context.Context, machineID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultChatHistoryLimit
	}

	var messages []model.ChatMessage
	err := s.db.WithContext(ctx).Preload("User").
		Where("machine_id = ?", machineID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chat for machine %s: %w", machineID, err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
