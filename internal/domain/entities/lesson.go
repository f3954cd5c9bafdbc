package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// VisualEventType represents the kind of visual event fired at a checkpoint
type VisualEventType string

const (
	VisualEventDraw      VisualEventType = "draw"
	VisualEventFadeIn    VisualEventType = "fadeIn"
	VisualEventHighlight VisualEventType = "highlight"
	VisualEventMove      VisualEventType = "move"
	VisualEventPause     VisualEventType = "pause"
	VisualEventQuiz      VisualEventType = "quiz"
)

// Zone represents a named canvas region used to position a visual
type Zone string

const (
	ZoneCenterMain    Zone = "centerMain"
	ZoneLeftSupport   Zone = "leftSupport"
	ZoneRightNotes    Zone = "rightNotes"
	ZoneTopHeader     Zone = "topHeader"
	ZoneBottomContext Zone = "bottomContext"
)

// Role represents the semantic role of a visual element
type Role string

const (
	RolePrimaryDiagram    Role = "primaryDiagram"
	RoleSupportingDiagram Role = "supportingDiagram"
	RoleProp              Role = "prop"
	RoleIcon              Role = "icon"
)

// ScaleHint represents a coarse size hint for a visual element
type ScaleHint string

const (
	ScaleLarge  ScaleHint = "large"
	ScaleMedium ScaleHint = "medium"
	ScaleSmall  ScaleHint = "small"
)

// InteractionType represents the kind of end-of-scene interaction
type InteractionType string

const (
	InteractionQuiz            InteractionType = "quiz"
	InteractionPauseAndThink   InteractionType = "pauseAndThink"
	InteractionLabelPrediction InteractionType = "labelPrediction"
	InteractionNone            InteractionType = "none"
)

// VoiceoverSegment is one narration segment aligned to a checkpoint
type VoiceoverSegment struct {
	Text         string `json:"text"`
	CheckpointID string `json:"checkpointId"`
}

// VisualEvent is a visual reveal scheduled against a narration checkpoint.
// Identity for deduplication is the (AssetID, CheckpointID) pair.
type VisualEvent struct {
	Type         VisualEventType        `json:"type"`
	AssetID      string                 `json:"assetId"`
	CheckpointID string                 `json:"checkpointId"`
	Zone         Zone                   `json:"zone"`
	Role         Role                   `json:"role"`
	ScaleHint    ScaleHint              `json:"scaleHint"`
	Params       map[string]interface{} `json:"params,omitempty"`
}

// EventKey is the composite deduplication key of a VisualEvent
type EventKey struct {
	AssetID      string
	CheckpointID string
}

// Key returns the deduplication key for the event
func (e VisualEvent) Key() EventKey {
	return EventKey{AssetID: e.AssetID, CheckpointID: e.CheckpointID}
}

// Interaction is the optional end-of-scene interactive element
type Interaction struct {
	Type          InteractionType `json:"type"`
	Prompt        *string         `json:"prompt,omitempty"`
	Options       []string        `json:"options,omitempty"`
	CorrectAnswer *string         `json:"correctAnswer,omitempty"`
}

// Scene is one scene of a lesson: narration segments, visual events and an
// optional interaction
type Scene struct {
	SceneID     string             `json:"sceneId"`
	Purpose     string             `json:"purpose"`
	AssetsUsed  []string           `json:"assetsUsed,omitempty"`
	Voiceover   []VoiceoverSegment `json:"voiceover"`
	Events      []VisualEvent      `json:"events"`
	Interaction Interaction        `json:"interaction"`
}

// EventsAt returns the scene's visual events bound to the given checkpoint,
// in declaration order.
func (s *Scene) EventsAt(checkpointID string) []VisualEvent {
	var out []VisualEvent
	for _, ev := range s.Events {
		if ev.CheckpointID == checkpointID {
			out = append(out, ev)
		}
	}
	return out
}

// LessonScript is the complete lesson manifest produced by the content
// pipeline. It is immutable once loaded and replaced wholesale when a new
// lesson loads.
type LessonScript struct {
	LessonDurationSec float64 `json:"lessonDurationSec"`
	Scenes            []Scene `json:"scenes"`
}

// Transcript returns the narration text of every voiceover segment in script
// order, one entry per segment.
func (ls *LessonScript) Transcript() []string {
	var out []string
	for _, scene := range ls.Scenes {
		for _, seg := range scene.Voiceover {
			out = append(out, seg.Text)
		}
	}
	return out
}

// SceneByID returns the scene with the given id, or nil
func (ls *LessonScript) SceneByID(sceneID string) *Scene {
	for i := range ls.Scenes {
		if ls.Scenes[i].SceneID == sceneID {
			return &ls.Scenes[i]
		}
	}
	return nil
}

// Lesson is the stored form of an ingested lesson: the manifest plus the
// object key of its narration audio
type Lesson struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title          string         `gorm:"type:varchar(255);not null" json:"title"`
	Manifest       datatypes.JSON `gorm:"type:jsonb;not null" json:"manifest"`
	AudioObjectKey string         `gorm:"type:varchar(512);not null" json:"audio_object_key"`
	CreatedAt      time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for Lesson
func (Lesson) TableName() string {
	return "lessons"
}
