package visual

import (
	"sync"

	"github.com/inkline-team/inkline/internal/domain/entities"
	"github.com/inkline-team/inkline/internal/usecase/playback"
	"github.com/inkline-team/inkline/pkg/pubsub"
)

// TopicEventsActivated carries []Activation whenever a checkpoint materializes
// new visual events
const TopicEventsActivated pubsub.Topic = "visual.activated"

// DefaultAnimationSec is used when an event carries no params.duration
const DefaultAnimationSec = 0.5

// AnimationKind selects the reveal animation for an activated event
type AnimationKind string

const (
	AnimationFade       AnimationKind = "fade"
	AnimationScalePulse AnimationKind = "scalePulse"
	AnimationMove       AnimationKind = "move"
	AnimationReveal     AnimationKind = "reveal"
	AnimationQuizReveal AnimationKind = "quizReveal"
)

// Animation is the rendering policy attached to an activation. It is a
// presentation descriptor layered on top of the activation contract; the
// activation, dedup, and clear semantics do not depend on it.
type Animation struct {
	Kind     AnimationKind `json:"kind"`
	Duration float64       `json:"duration"`
}

// Activation is one newly materialized visual event
type Activation struct {
	Event     entities.VisualEvent `json:"event"`
	Animation Animation            `json:"animation"`
}

// Executor maintains the set of currently active visual events for the
// current scene. Activation is idempotent per (assetId, checkpointId) key:
// re-firing a checkpoint, or overlapping events, never duplicates a render.
// The set is cleared entirely on sync-reset, scene change and lesson change,
// and is never persisted.
type Executor struct {
	bus *pubsub.Bus

	mu     sync.Mutex
	scene  *entities.Scene
	active map[entities.EventKey]entities.VisualEvent
	order  []entities.EventKey

	unsubs []func()
}

// NewExecutor wires an executor to the bus
func NewExecutor(bus *pubsub.Bus) *Executor {
	e := &Executor{
		bus:    bus,
		active: make(map[entities.EventKey]entities.VisualEvent),
	}

	e.unsubs = append(e.unsubs,
		bus.Subscribe(playback.TopicCheckpointReached, func(payload interface{}) {
			if cp, ok := payload.(entities.AudioCheckpoint); ok {
				e.fire(cp)
			}
		}),
		bus.Subscribe(playback.TopicSyncReset, func(interface{}) {
			e.Reset()
		}),
	)

	return e
}

// EnterScene switches to a new scene, clearing the active set
func (e *Executor) EnterScene(scene *entities.Scene) {
	e.mu.Lock()
	e.scene = scene
	e.clearLocked()
	e.mu.Unlock()
}

// fire activates the scene's events bound to the checkpoint and publishes
// the newly activated ones
func (e *Executor) fire(cp entities.AudioCheckpoint) {
	e.mu.Lock()
	if e.scene == nil {
		e.mu.Unlock()
		return
	}

	var activated []Activation
	for _, ev := range e.scene.EventsAt(cp.ID) {
		key := ev.Key()
		if _, exists := e.active[key]; exists {
			continue
		}
		e.active[key] = ev
		e.order = append(e.order, key)
		activated = append(activated, Activation{Event: ev, Animation: animationFor(ev)})
	}
	e.mu.Unlock()

	if len(activated) > 0 {
		e.bus.Publish(TopicEventsActivated, activated)
	}
}

// Reset clears the active set (seek, end of playback)
func (e *Executor) Reset() {
	e.mu.Lock()
	e.clearLocked()
	e.mu.Unlock()
}

// Active returns the active events in activation order
func (e *Executor) Active() []entities.VisualEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]entities.VisualEvent, 0, len(e.order))
	for _, key := range e.order {
		out = append(out, e.active[key])
	}
	return out
}

// Close detaches the executor from the bus
func (e *Executor) Close() {
	for _, unsub := range e.unsubs {
		unsub()
	}
	e.unsubs = nil
}

func (e *Executor) clearLocked() {
	e.active = make(map[entities.EventKey]entities.VisualEvent)
	e.order = e.order[:0]
}

// animationFor maps the event type to its reveal animation, reading the
// duration from params.duration when present
func animationFor(ev entities.VisualEvent) Animation {
	anim := Animation{Duration: DefaultAnimationSec}

	switch ev.Type {
	case entities.VisualEventFadeIn:
		anim.Kind = AnimationFade
	case entities.VisualEventHighlight:
		anim.Kind = AnimationScalePulse
	case entities.VisualEventMove:
		anim.Kind = AnimationMove
	case entities.VisualEventQuiz:
		anim.Kind = AnimationQuizReveal
	default:
		// draw and pause reveal immediately
		anim.Kind = AnimationReveal
	}

	if ev.Params != nil {
		if d, ok := ev.Params["duration"].(float64); ok && d > 0 {
			anim.Duration = d
		}
	}

	return anim
}
