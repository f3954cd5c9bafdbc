package errors

import "errors"

// Common errors
var (
	ErrInvalidInput = errors.New("invalid input")
)

// Lesson errors
var (
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrEmptyManifest      = errors.New("lesson manifest is empty")
	ErrTooManyScenes      = errors.New("lesson must not contain more than 5 scenes")
	ErrNoScenes           = errors.New("lesson must contain at least one scene")
	ErrInvalidDuration    = errors.New("lesson duration must be positive and at most 180 seconds")
	ErrMissingInteraction = errors.New("lesson must contain at least one interactive scene")
	ErrDanglingCheckpoint = errors.New("visual event references a checkpoint missing from voiceover")
	ErrEmptyAssetID       = errors.New("visual event asset id cannot be empty")
)

// Session errors
var (
	ErrSessionRecordNotFound  = errors.New("session record not found")
	ErrSessionPointerNotFound = errors.New("session pointer not found")
)

// Annotation errors
var (
	ErrAnnotationModeOff   = errors.New("annotation mode is not enabled")
	ErrGestureWhilePlaying = errors.New("cannot draw while media is playing")
)
