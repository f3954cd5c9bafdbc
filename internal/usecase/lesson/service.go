package lesson

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/inkline-team/inkline/internal/domain/entities"
	"github.com/inkline-team/inkline/internal/domain/repositories"
	"github.com/inkline-team/inkline/internal/usecase/schedule"
)

// AssetResolver resolves stored object keys and asset ids to renderable URLs.
// Asset loading itself (decode, retry) lives behind this boundary.
type AssetResolver interface {
	ResolveURL(ctx context.Context, objectKey string) (string, error)
	ResolveScene(ctx context.Context, scene *entities.Scene) map[string]string
}

// Service handles lesson ingestion and retrieval
type Service struct {
	lessons repositories.LessonRepository
	assets  AssetResolver
	logger  *zap.Logger
}

// NewService creates a lesson service
func NewService(lessons repositories.LessonRepository, assets AssetResolver, logger *zap.Logger) *Service {
	return &Service{
		lessons: lessons,
		assets:  assets,
		logger:  logger,
	}
}

// IngestInput represents a lesson manifest arriving from the content
// pipeline
type IngestInput struct {
	Title          string
	Manifest       entities.LessonScript
	AudioObjectKey string
}

// Ingest validates and stores a lesson manifest
func (s *Service) Ingest(ctx context.Context, input IngestInput) (*entities.Lesson, error) {
	if err := ValidateManifest(&input.Manifest); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(input.Manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}

	lesson := &entities.Lesson{
		Title:          input.Title,
		Manifest:       datatypes.JSON(raw),
		AudioObjectKey: input.AudioObjectKey,
	}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, fmt.Errorf("failed to store lesson: %w", err)
	}

	s.logger.Info("lesson ingested",
		zap.String("lesson_id", lesson.ID.String()),
		zap.Int("scenes", len(input.Manifest.Scenes)))
	return lesson, nil
}

// Get returns a stored lesson together with its decoded script
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entities.Lesson, *entities.LessonScript, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var script entities.LessonScript
	if err := json.Unmarshal(lesson.Manifest, &script); err != nil {
		return nil, nil, fmt.Errorf("failed to decode stored manifest: %w", err)
	}
	return lesson, &script, nil
}

// List returns stored lessons, newest first
func (s *Service) List(ctx context.Context, limit, offset int) ([]*entities.Lesson, error) {
	lessons, err := s.lessons.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

// Delete removes a stored lesson
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.lessons.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	s.logger.Info("lesson deleted", zap.String("lesson_id", id.String()))
	return nil
}

// AudioURL resolves the lesson's narration audio to a playable URL
func (s *Service) AudioURL(ctx context.Context, lesson *entities.Lesson) (string, error) {
	url, err := s.assets.ResolveURL(ctx, lesson.AudioObjectKey)
	if err != nil {
		return "", fmt.Errorf("failed to resolve narration audio: %w", err)
	}
	return url, nil
}

// AssetURLs resolves every visual asset the script references, grouped by
// scene id. Scenes whose assets all fail to resolve are omitted; the player
// falls back to placeholders for anything missing here.
func (s *Service) AssetURLs(ctx context.Context, script *entities.LessonScript) map[string]map[string]string {
	urls := make(map[string]map[string]string, len(script.Scenes))
	for i := range script.Scenes {
		scene := &script.Scenes[i]
		resolved := s.assets.ResolveScene(ctx, scene)
		if len(resolved) == 0 {
			continue
		}
		urls[scene.SceneID] = resolved
	}
	return urls
}

// Schedule builds the checkpoint schedule for a stored lesson
func (s *Service) Schedule(ctx context.Context, id uuid.UUID) ([]entities.AudioCheckpoint, error) {
	_, script, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return schedule.Build(script), nil
}
