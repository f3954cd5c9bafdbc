package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkline-team/inkline/internal/domain/entities"
	usecaseErrors "github.com/inkline-team/inkline/internal/usecase/errors"
)

// SessionRecordRepository implements the session record repository interface
// using GORM
type SessionRecordRepository struct {
	db *gorm.DB
}

// NewSessionRecordRepository creates a new session record repository
func NewSessionRecordRepository(db *gorm.DB) *SessionRecordRepository {
	return &SessionRecordRepository{
		db: db,
	}
}

// Find finds the session record for a lesson
func (r *SessionRecordRepository) Find(ctx context.Context, lessonID string) (*entities.SessionRecord, error) {
	var record entities.SessionRecord
	if err := r.db.WithContext(ctx).Where("lesson_id = ?", lessonID).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, usecaseErrors.ErrSessionRecordNotFound
		}
		return nil, fmt.Errorf("failed to find session record: %w", err)
	}
	return &record, nil
}

// Save upserts the session record for a lesson. Writes are last-write-wins:
// the newest snapshot replaces whatever was stored before.
func (r *SessionRecordRepository) Save(ctx context.Context, record *entities.SessionRecord) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lesson_id"}},
			UpdateAll: true,
		}).
		Create(record).Error; err != nil {
		return fmt.Errorf("failed to save session record: %w", err)
	}
	return nil
}

// Delete removes the session record for a lesson
func (r *SessionRecordRepository) Delete(ctx context.Context, lessonID string) error {
	if err := r.db.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Delete(&entities.SessionRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete session record: %w", err)
	}
	return nil
}
