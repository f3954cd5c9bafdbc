package annotation

import (
	"sync"
	"time"

	"github.com/inkline-team/inkline/internal/domain/entities"
	usecaseErrors "github.com/inkline-team/inkline/internal/usecase/errors"
	"github.com/inkline-team/inkline/pkg/pubsub"
)

// Bus topics published by annotation capture
const (
	// TopicPauseRequested fires when annotation mode is enabled during
	// playback; the coordinator pauses the clock in response
	TopicPauseRequested pubsub.Topic = "annotation.pause"
	// TopicLineCommitted carries an entities.AnnotationLine on every commit
	TopicLineCommitted pubsub.Topic = "annotation.committed"
)

// frameInterval bounds gesture-move sampling to one animation frame
const frameInterval = 16 * time.Millisecond

// Capture records freehand strokes, one gesture at a time: Idle → Drawing on
// gesture-start (mode on, playback paused), Drawing → Idle on gesture-end or
// pointer-leave, committing the in-progress line if non-empty. Committed
// lines are append-only; the list is only ever replaced on hydration or
// cleared on new material.
type Capture struct {
	bus *pubsub.Bus
	now func() time.Time

	mu         sync.Mutex
	mode       bool
	drawing    bool
	current    []entities.Point
	lines      []entities.AnnotationLine
	lastSample time.Time
}

// NewCapture creates an idle capture
func NewCapture(bus *pubsub.Bus) *Capture {
	return &Capture{bus: bus, now: time.Now}
}

// SetMode toggles annotation mode. Enabling it during playback requests a
// pause (drawing while playing is disallowed); disabling it cancels any
// in-progress gesture by committing what was drawn so far.
func (c *Capture) SetMode(enabled, playing bool) {
	c.mu.Lock()
	c.mode = enabled
	var committed *entities.AnnotationLine
	if !enabled && c.drawing {
		committed = c.commitLocked()
	}
	c.mu.Unlock()

	if enabled && playing {
		c.bus.Publish(TopicPauseRequested, nil)
	}
	if committed != nil {
		c.bus.Publish(TopicLineCommitted, *committed)
	}
}

// BeginGesture starts a new stroke. Fails unless annotation mode is enabled
// and playback is not active.
func (c *Capture) BeginGesture(p entities.Point, playing bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.mode {
		return usecaseErrors.ErrAnnotationModeOff
	}
	if playing {
		return usecaseErrors.ErrGestureWhilePlaying
	}

	c.drawing = true
	c.current = []entities.Point{p}
	c.lastSample = c.now()
	return nil
}

// MoveGesture appends a pointer sample to the in-progress line, throttled to
// one animation-frame interval. Ignored when no gesture is in progress.
func (c *Capture) MoveGesture(p entities.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.drawing {
		return
	}
	now := c.now()
	if now.Sub(c.lastSample) < frameInterval {
		return
	}
	c.current = append(c.current, p)
	c.lastSample = now
}

// EndGesture finishes the stroke at p and commits it. The final point is
// always recorded regardless of throttling.
func (c *Capture) EndGesture(p entities.Point) (entities.AnnotationLine, bool) {
	c.mu.Lock()
	if !c.drawing {
		c.mu.Unlock()
		return entities.AnnotationLine{}, false
	}
	c.current = append(c.current, p)
	committed := c.commitLocked()
	c.mu.Unlock()

	if committed == nil {
		return entities.AnnotationLine{}, false
	}
	c.bus.Publish(TopicLineCommitted, *committed)
	return *committed, true
}

// LeaveGesture handles the pointer leaving the canvas: the stroke is
// committed as-is, without a final point.
func (c *Capture) LeaveGesture() (entities.AnnotationLine, bool) {
	c.mu.Lock()
	committed := c.commitLocked()
	c.mu.Unlock()

	if committed == nil {
		return entities.AnnotationLine{}, false
	}
	c.bus.Publish(TopicLineCommitted, *committed)
	return *committed, true
}

// HandlePlaybackStarted cancels an in-progress gesture when playback starts,
// committing what was drawn so far
func (c *Capture) HandlePlaybackStarted() {
	c.mu.Lock()
	committed := c.commitLocked()
	c.mu.Unlock()

	if committed != nil {
		c.bus.Publish(TopicLineCommitted, *committed)
	}
}

// Lines returns a copy of the committed lines
func (c *Capture) Lines() []entities.AnnotationLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]entities.AnnotationLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Replace swaps the whole committed list (session hydration)
func (c *Capture) Replace(lines []entities.AnnotationLine) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = make([]entities.AnnotationLine, len(lines))
	copy(c.lines, lines)
	c.drawing = false
	c.current = nil
}

// Clear drops all committed lines (new material)
func (c *Capture) Clear() {
	c.Replace(nil)
}

// Mode reports whether annotation mode is enabled
func (c *Capture) Mode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Drawing reports whether a gesture is in progress
func (c *Capture) Drawing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawing
}

// commitLocked moves the in-progress line to the committed list and returns
// it, or nil when there was nothing to commit
func (c *Capture) commitLocked() *entities.AnnotationLine {
	c.drawing = false
	if len(c.current) == 0 {
		return nil
	}
	line := entities.AnnotationLine{Points: c.current}
	c.current = nil
	c.lines = append(c.lines, line)
	return &line
}
