package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/inkline-team/inkline/internal/domain/entities"
)

// LessonRepository defines persistence operations for ingested lessons
type LessonRepository interface {
	Create(ctx context.Context, lesson *entities.Lesson) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Lesson, error)
	List(ctx context.Context, limit, offset int) ([]*entities.Lesson, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
