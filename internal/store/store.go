package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"factory-floor-backend/internal/model"
)

// Sentinel errors surfaced by the store. The API layer maps these to HTTP
// statuses.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDowntimeClosed = errors.New("downtime already closed")
	ErrEndBeforeStart = errors.New("end time is before start time")
	ErrUsernameTaken  = errors.New("username already taken")
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Machines
	ListMachines(ctx context.Context) ([]model.Machine, error)
	GetMachine(ctx context.Context, id string) (*model.Machine, error)
	CreateMachine(ctx context.Context, m *model.Machine) error
	UpdateMachineStatus(ctx context.Context, id, status string) (*model.Machine, error)

	// Production lines
	ListProductionLines(ctx context.Context) ([]model.ProductionLine, error)
	GetProductionLine(ctx context.Context, id string) (*model.ProductionLine, error)

	// Annotations
	ListAnnotationsByMachine(ctx context.Context, machineID string) ([]model.Annotation, error)
	CreateAnnotation(ctx context.Context, a *model.Annotation) error
	UpdateAnnotationContent(ctx context.Context, id string, content map[string]any) (*model.Annotation, error)
	DeleteAnnotation(ctx context.Context, id string) (*model.Annotation, error)

	// Chat
	CreateChatMessage(ctx context.Context, m *model.ChatMessage) error
	ListChatByMachine(ctx context.Context, machineID string, limit int) ([]model.ChatMessage, error)

	// Downtimes
	ListDowntimes(ctx context.Context) ([]model.Downtime, error)
	ListDowntimesByMachine(ctx context.Context, machineID string) ([]model.Downtime, error)
	CreateDowntime(ctx context.Context, d *model.Downtime) error
	CloseDowntime(ctx context.Context, id string, end time.Time) (*model.Downtime, error)

	// Users
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
	UpdateUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id string) error

	// Audit trail
	AppendEvent(ctx context.Context, e *model.EventLog) error

	// Push subscriptions
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription, machineIDs []string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForMachine(ctx context.Context, machineID string) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// AppendEvent inserts one audit row. The audit trail is write-only.
func (s *gormStore) AppendEvent(ctx context.Context, e *model.EventLog) error {
	return s.db.WithContext(ctx).Create(e).Error
}
