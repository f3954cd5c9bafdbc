package entities

import (
	"time"

	"gorm.io/datatypes"
)

// LayerVisibility holds the two independent layer toggles
type LayerVisibility struct {
	AIDrawings bool `json:"aiDrawings"`
	MyNotes    bool `json:"myNotes"`
}

// DefaultLayerVisibility returns the visibility a fresh session starts with
func DefaultLayerVisibility() LayerVisibility {
	return LayerVisibility{AIDrawings: true, MyNotes: true}
}

// SessionRecord is the durable per-lesson snapshot of playback, annotation
// and UI state. One record per lesson id, written best-effort by the owning
// tab and superseded by a newer LastUpdated from another tab.
type SessionRecord struct {
	LessonID            string                                     `gorm:"type:varchar(64);primary_key" json:"lesson_id"`
	PlaybackPosition    float64                                    `gorm:"not null;default:0" json:"playback_position"`
	AnnotationLines     datatypes.JSONType[[]AnnotationLine]       `gorm:"type:jsonb" json:"annotation_lines"`
	LayerVisibility     datatypes.JSONType[LayerVisibility]        `gorm:"type:jsonb" json:"layer_visibility"`
	TranscriptPanelOpen bool                                       `gorm:"not null;default:false" json:"transcript_panel_open"`
	LastUpdated         time.Time                                  `gorm:"not null;index" json:"last_updated"`
}

// TableName specifies the table name for SessionRecord
func (SessionRecord) TableName() string {
	return "session_records"
}

// NewSessionRecord creates a fresh record with default state for a lesson
func NewSessionRecord(lessonID string) *SessionRecord {
	return &SessionRecord{
		LessonID:        lessonID,
		AnnotationLines: datatypes.NewJSONType([]AnnotationLine{}),
		LayerVisibility: datatypes.NewJSONType(DefaultLayerVisibility()),
		LastUpdated:     time.Now(),
	}
}

// SessionSnapshot is the composite state gathered at write time by the
// debounced session writer
type SessionSnapshot struct {
	PlaybackPosition    float64
	AnnotationLines     []AnnotationLine
	LayerVisibility     LayerVisibility
	TranscriptPanelOpen bool
}

// Apply copies the snapshot into the record and stamps it
func (r *SessionRecord) Apply(snap SessionSnapshot, at time.Time) {
	r.PlaybackPosition = snap.PlaybackPosition
	r.AnnotationLines = datatypes.NewJSONType(snap.AnnotationLines)
	r.LayerVisibility = datatypes.NewJSONType(snap.LayerVisibility)
	r.TranscriptPanelOpen = snap.TranscriptPanelOpen
	r.LastUpdated = at
}

// SessionPointer is the single shared record used for cross-tab ownership
// arbitration. It is advisory: a second tab can still force-claim.
type SessionPointer struct {
	LessonID  string    `json:"lesson_id"`
	TabID     string    `json:"tab_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Age reports how long ago the pointer was written
func (p *SessionPointer) Age(now time.Time) time.Duration {
	return now.Sub(p.Timestamp)
}

// Stale reports whether the claim is older than the stale timeout and may be
// auto-claimed
func (p *SessionPointer) Stale(now time.Time, timeout time.Duration) bool {
	return p.Age(now) > timeout
}
