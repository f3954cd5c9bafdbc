package lesson

import (
	"encoding/json"
	"time"

	"github.com/inkline-team/inkline/internal/domain/entities"
)

// LessonResponse represents a stored lesson in responses
type LessonResponse struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Manifest       json.RawMessage `json:"manifest,omitempty"`
	AudioObjectKey string          `json:"audio_object_key"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CheckpointResponse represents one checkpoint of the derived schedule
type CheckpointResponse struct {
	ID               string  `json:"id"`
	TimestampSeconds float64 `json:"timestampSeconds"`
	Text             string  `json:"text"`
}

// ScheduleResponse represents the derived checkpoint schedule of a lesson
type ScheduleResponse struct {
	LessonID    string               `json:"lesson_id"`
	Checkpoints []CheckpointResponse `json:"checkpoints"`
	Duration    float64              `json:"duration_seconds"`
}

// LessonDetailResponse represents a lesson together with everything the
// player needs to start: manifest, playable audio URL, resolved asset URLs
// and schedule. AssetURLs is keyed by scene id, then asset id.
type LessonDetailResponse struct {
	Lesson     LessonResponse               `json:"lesson"`
	AudioURL   string                       `json:"audio_url"`
	AssetURLs  map[string]map[string]string `json:"asset_urls"`
	Transcript []string                     `json:"transcript"`
	Schedule   []CheckpointResponse         `json:"schedule"`
}

// PlacementResponse represents a computed asset placement
type PlacementResponse struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// FromEntity converts a lesson entity to its response form
func FromEntity(l *entities.Lesson, includeManifest bool) LessonResponse {
	resp := LessonResponse{
		ID:             l.ID.String(),
		Title:          l.Title,
		AudioObjectKey: l.AudioObjectKey,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
	if includeManifest {
		resp.Manifest = json.RawMessage(l.Manifest)
	}
	return resp
}

// CheckpointsFromEntities converts schedule checkpoints to response form
func CheckpointsFromEntities(cps []entities.AudioCheckpoint) []CheckpointResponse {
	out := make([]CheckpointResponse, 0, len(cps))
	for _, cp := range cps {
		out = append(out, CheckpointResponse{
			ID:               cp.ID,
			TimestampSeconds: cp.Timestamp,
			Text:             cp.Text,
		})
	}
	return out
}
