package session

import (
	"github.com/inkline-team/inkline/internal/domain/entities"
)

// SaveSessionRequest represents a full session snapshot to persist
type SaveSessionRequest struct {
	PlaybackPosition    float64                   `json:"playback_position" validate:"gte=0"`
	AnnotationLines     []entities.AnnotationLine `json:"annotation_lines"`
	LayerVisibility     entities.LayerVisibility  `json:"layer_visibility"`
	TranscriptPanelOpen bool                      `json:"transcript_panel_open"`
}
