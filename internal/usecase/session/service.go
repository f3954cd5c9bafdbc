package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/inkline-team/inkline/internal/domain/entities"
	"github.com/inkline-team/inkline/internal/domain/repositories"
	usecaseErrors "github.com/inkline-team/inkline/internal/usecase/errors"
)

// Conflict classifies an ownership check against the current-session pointer
type Conflict string

const (
	// ConflictNone means the lesson is unowned (or owned by this tab)
	ConflictNone Conflict = "none"
	// ConflictActive means another tab claimed the lesson recently
	ConflictActive Conflict = "active"
	// ConflictStale means another tab's claim is older than the stale
	// timeout and is safe to auto-claim
	ConflictStale Conflict = "stale"
)

// Service implements durable session-record access and tab ownership
// arbitration. Storage failures degrade to defaults: hydration misses return
// a fresh record and write failures are logged and dropped, never surfaced
// as fatal.
type Service struct {
	records repositories.SessionRecordRepository
	pointer repositories.SessionPointerRepository
	logger  *zap.Logger

	now          func() time.Time
	staleTimeout time.Duration
	opTimeout    time.Duration
}

// NewService creates a session service. staleTimeout bounds how old a
// foreign claim may be before it is treated as abandoned; opTimeout bounds
// every storage operation.
func NewService(
	records repositories.SessionRecordRepository,
	pointer repositories.SessionPointerRepository,
	logger *zap.Logger,
	staleTimeout, opTimeout time.Duration,
) *Service {
	return &Service{
		records:      records,
		pointer:      pointer,
		logger:       logger,
		now:          time.Now,
		staleTimeout: staleTimeout,
		opTimeout:    opTimeout,
	}
}

// CheckOwnership classifies entering a lesson against the shared pointer:
// no pointer or a different lesson is no conflict; a matching pointer from
// another tab is stale past the timeout, otherwise an active conflict. A
// pointer this tab already owns is no conflict. Pointer read failures are
// treated as no conflict: the system favors availability over strict
// exclusion.
func (s *Service) CheckOwnership(ctx context.Context, lessonID, tabID string) (Conflict, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	ptr, err := s.pointer.Get(ctx)
	if err != nil {
		if !errors.Is(err, usecaseErrors.ErrSessionPointerNotFound) {
			s.logger.Warn("session pointer read failed, proceeding without conflict",
				zap.String("lesson_id", lessonID), zap.Error(err))
		}
		return ConflictNone, nil
	}

	if ptr.LessonID != lessonID || ptr.TabID == tabID {
		return ConflictNone, nil
	}
	if ptr.Stale(s.now(), s.staleTimeout) {
		return ConflictStale, nil
	}
	return ConflictActive, nil
}

// Pointer returns the current shared pointer, or nil when nothing is
// claimed
func (s *Service) Pointer(ctx context.Context) (*entities.SessionPointer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	ptr, err := s.pointer.Get(ctx)
	if err != nil {
		if errors.Is(err, usecaseErrors.ErrSessionPointerNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ptr, nil
}

// Claim overwrites the shared pointer with this tab's ownership of the
// lesson
func (s *Service) Claim(ctx context.Context, lessonID, tabID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	ptr := &entities.SessionPointer{
		LessonID:  lessonID,
		TabID:     tabID,
		Timestamp: s.now(),
	}
	if err := s.pointer.Set(ctx, ptr); err != nil {
		return fmt.Errorf("failed to claim session pointer: %w", err)
	}
	return nil
}

// Hydrate reads the session record for a lesson. A missing record or a read
// failure yields a fresh default record rather than blocking the caller.
func (s *Service) Hydrate(ctx context.Context, lessonID string) *entities.SessionRecord {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	record, err := s.records.Find(ctx, lessonID)
	if err != nil {
		if !errors.Is(err, usecaseErrors.ErrSessionRecordNotFound) {
			s.logger.Warn("session hydration failed, starting from defaults",
				zap.String("lesson_id", lessonID), zap.Error(err))
		}
		return entities.NewSessionRecord(lessonID)
	}
	return record
}

// Persist writes the composite snapshot as the lesson's session record
func (s *Service) Persist(ctx context.Context, lessonID string, snap entities.SessionSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	record := entities.NewSessionRecord(lessonID)
	record.Apply(snap, s.now())
	if err := s.records.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to persist session record: %w", err)
	}
	return nil
}

// Clear deletes the lesson's session record ("start new material") and
// clears the shared pointer when it points at this lesson
func (s *Service) Clear(ctx context.Context, lessonID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.records.Delete(ctx, lessonID); err != nil &&
		!errors.Is(err, usecaseErrors.ErrSessionRecordNotFound) {
		return fmt.Errorf("failed to delete session record: %w", err)
	}

	ptr, err := s.pointer.Get(ctx)
	if err != nil {
		if errors.Is(err, usecaseErrors.ErrSessionPointerNotFound) {
			return nil
		}
		return fmt.Errorf("failed to read session pointer: %w", err)
	}
	if ptr.LessonID == lessonID {
		if err := s.pointer.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear session pointer: %w", err)
		}
	}
	return nil
}
