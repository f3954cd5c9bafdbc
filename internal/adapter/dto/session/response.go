package session

import (
	"time"

	"github.com/inkline-team/inkline/internal/domain/entities"
)

// SessionStateResponse represents a hydrated session record
type SessionStateResponse struct {
	LessonID            string                    `json:"lesson_id"`
	PlaybackPosition    float64                   `json:"playback_position"`
	AnnotationLines     []entities.AnnotationLine `json:"annotation_lines"`
	LayerVisibility     entities.LayerVisibility  `json:"layer_visibility"`
	TranscriptPanelOpen bool                      `json:"transcript_panel_open"`
	LastUpdated         time.Time                 `json:"last_updated"`
}

// OwnershipResponse represents a conflict-free ownership check; conflicts
// answer an error response instead
type OwnershipResponse struct {
	Conflict string `json:"conflict"`
}

// FromRecord converts a session record to its response form
func FromRecord(r *entities.SessionRecord) SessionStateResponse {
	return SessionStateResponse{
		LessonID:            r.LessonID,
		PlaybackPosition:    r.PlaybackPosition,
		AnnotationLines:     r.AnnotationLines.Data(),
		LayerVisibility:     r.LayerVisibility.Data(),
		TranscriptPanelOpen: r.TranscriptPanelOpen,
		LastUpdated:         r.LastUpdated,
	}
}
