package sessions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface for session operations
type Repository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	List(ctx context.Context, from *uuid.UUID, limit int) ([]Session, error)
	MarkSeatsGenerated(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, session *Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	var session Session
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) List(ctx context.Context, from *uuid.UUID, limit int) ([]Session, error) {
	var sessions []Session
	query := r.db.WithContext(ctx).Order("starts_at ASC")
	if from != nil {
		query = query.Where("id > ?", *from)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&sessions).Error
	return sessions, err
}

func (r *repository) MarkSeatsGenerated(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Session{}).
		Where("id = ?", id).
		Update("seats_generated", true).Error
}
