package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"factory-floor-backend/internal/model"
)

// ListUsers returns every user.
func (s *gormStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns one user by id.
func (s *gormStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &user, nil
}

// GetUserByUsername returns one user by unique username.
func (s *gormStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return &user, nil
}

// CreateUser inserts a user. Usernames are unique.
func (s *gormStore) CreateUser(ctx context.Context, u *model.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check username %q: %w", u.Username, err)
	}
	if count > 0 {
		return ErrUsernameTaken
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateUser saves a user's mutable fields. The username is immutable and is
// never written here.
func (s *gormStore) UpdateUser(ctx context.Context, u *model.User) error {
	err := s.db.WithContext(ctx).Model(&model.User{ID: u.ID}).
		Updates(map[string]any{
			"display_name":  u.DisplayName,
			"role":          u.Role,
			"password_hash": u.PasswordHash,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", u.ID, err)
	}
	return nil
}

// DeleteUser removes a user.
func (s *gormStore) DeleteUser(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
