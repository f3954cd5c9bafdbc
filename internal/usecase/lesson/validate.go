package lesson

import (
	"fmt"
	"strings"

	"github.com/inkline-team/inkline/internal/domain/entities"
	usecaseErrors "github.com/inkline-team/inkline/internal/usecase/errors"
)

const (
	maxLessonDurationSec = 180
	maxScenes            = 5
)

// ValidateManifest rejects malformed lesson scripts at load time, before a
// schedule is ever built. Runtime components stay lenient (a dangling
// checkpoint reference simply never fires); ingestion is strict so broken
// manifests never reach storage.
func ValidateManifest(m *entities.LessonScript) error {
	if m == nil {
		return usecaseErrors.ErrEmptyManifest
	}
	if m.LessonDurationSec <= 0 || m.LessonDurationSec > maxLessonDurationSec {
		return usecaseErrors.ErrInvalidDuration
	}
	if len(m.Scenes) == 0 {
		return usecaseErrors.ErrNoScenes
	}
	if len(m.Scenes) > maxScenes {
		return usecaseErrors.ErrTooManyScenes
	}

	hasInteraction := false
	for i, scene := range m.Scenes {
		if scene.SceneID == "" {
			return fmt.Errorf("scene %d: missing scene id: %w", i+1, usecaseErrors.ErrInvalidInput)
		}

		voiceoverIDs := make(map[string]struct{}, len(scene.Voiceover))
		for _, seg := range scene.Voiceover {
			if seg.CheckpointID == "" {
				return fmt.Errorf("scene %s: voiceover segment missing checkpoint id: %w",
					scene.SceneID, usecaseErrors.ErrInvalidInput)
			}
			voiceoverIDs[seg.CheckpointID] = struct{}{}
		}

		for _, ev := range scene.Events {
			if strings.TrimSpace(ev.AssetID) == "" {
				return fmt.Errorf("scene %s: %w", scene.SceneID, usecaseErrors.ErrEmptyAssetID)
			}
			if _, ok := voiceoverIDs[ev.CheckpointID]; !ok {
				return fmt.Errorf("scene %s: event checkpoint %q: %w",
					scene.SceneID, ev.CheckpointID, usecaseErrors.ErrDanglingCheckpoint)
			}
		}

		if scene.Interaction.Type != "" && scene.Interaction.Type != entities.InteractionNone {
			hasInteraction = true
		}
	}

	if !hasInteraction {
		return usecaseErrors.ErrMissingInteraction
	}
	return nil
}
