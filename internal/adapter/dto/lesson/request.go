package lesson

import (
	"github.com/inkline-team/inkline/internal/domain/entities"
)

// IngestLessonRequest represents a lesson manifest arriving from the content
// pipeline
type IngestLessonRequest struct {
	Title          string                `json:"title" validate:"required,min=1,max=255"`
	Manifest       entities.LessonScript `json:"manifest" validate:"required"`
	AudioObjectKey string                `json:"audio_object_key" validate:"required,max=512"`
}

// ListLessonsRequest represents query parameters for listing lessons
type ListLessonsRequest struct {
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// PlacementRequest represents query parameters for computing an asset
// placement inside a zone
type PlacementRequest struct {
	Zone            string  `query:"zone" validate:"required,oneof=centerMain leftSupport rightNotes topHeader bottomContext"`
	ScaleHint       string  `query:"scale_hint" validate:"omitempty,oneof=large medium small"`
	ContainerWidth  float64 `query:"container_width" validate:"required,gt=0"`
	ContainerHeight float64 `query:"container_height" validate:"required,gt=0"`
	NativeWidth     float64 `query:"native_width" validate:"required,gt=0"`
	NativeHeight    float64 `query:"native_height" validate:"required,gt=0"`
}
