package repositories

import (
	"context"

	"github.com/inkline-team/inkline/internal/domain/entities"
)

// SessionRecordRepository defines durable storage for per-lesson session
// records
type SessionRecordRepository interface {
	Find(ctx context.Context, lessonID string) (*entities.SessionRecord, error)
	Save(ctx context.Context, record *entities.SessionRecord) error
	Delete(ctx context.Context, lessonID string) error
}

// SessionPointerRepository defines storage for the single shared
// current-session pointer used for tab ownership arbitration
type SessionPointerRepository interface {
	Get(ctx context.Context) (*entities.SessionPointer, error)
	Set(ctx context.Context, pointer *entities.SessionPointer) error
	Clear(ctx context.Context) error
}
