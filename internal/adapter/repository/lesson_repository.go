package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkline-team/inkline/internal/domain/entities"
	usecaseErrors "github.com/inkline-team/inkline/internal/usecase/errors"
)

// LessonRepository implements the lesson repository interface using GORM
type LessonRepository struct {
	db *gorm.DB
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{
		db: db,
	}
}

// Create stores a new ingested lesson
func (r *LessonRepository) Create(ctx context.Context, lesson *entities.Lesson) error {
	if err := r.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

// FindByID finds a lesson by ID
func (r *LessonRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Lesson, error) {
	var lesson entities.Lesson
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&lesson).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, usecaseErrors.ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to find lesson by ID: %w", err)
	}
	return &lesson, nil
}

// List returns lessons ordered by creation time, newest first
func (r *LessonRepository) List(ctx context.Context, limit, offset int) ([]*entities.Lesson, error) {
	var lessons []*entities.Lesson
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

// Delete removes a lesson
func (r *LessonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Lesson{}).Error; err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	return nil
}
