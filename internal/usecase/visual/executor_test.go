package visual

import (
	"testing"

	"github.com/inkline-team/inkline/internal/domain/entities"
	"github.com/inkline-team/inkline/internal/usecase/playback"
	"github.com/inkline-team/inkline/pkg/pubsub"
)

func testScene() *entities.Scene {
	return &entities.Scene{
		SceneID: "s1",
		Events: []entities.VisualEvent{
			{Type: entities.VisualEventDraw, AssetID: "asset-1", CheckpointID: "cp1"},
			{Type: entities.VisualEventFadeIn, AssetID: "asset-2", CheckpointID: "cp1"},
			{Type: entities.VisualEventHighlight, AssetID: "asset-1", CheckpointID: "cp2"},
		},
	}
}

func fire(bus *pubsub.Bus, id string) {
	bus.Publish(playback.TopicCheckpointReached, entities.AudioCheckpoint{ID: id})
}

func TestExecutorActivatesAllEventsAtCheckpoint(t *testing.T) {
	bus := pubsub.New()
	exec := NewExecutor(bus)
	defer exec.Close()
	exec.EnterScene(testScene())

	var batches [][]Activation
	bus.Subscribe(TopicEventsActivated, func(payload interface{}) {
		batches = append(batches, payload.([]Activation))
	})

	fire(bus, "cp1")
	if len(batches) != 1 || len(batches[0]) != 2 {
		t.Fatalf("expected one batch of 2 activations, got %v", batches)
	}

	// Firing cp1 again without a reset activates nothing
	fire(bus, "cp1")
	if len(batches) != 1 {
		t.Fatalf("expected no duplicate activation, got %d batches", len(batches))
	}
	if got := len(exec.Active()); got != 2 {
		t.Fatalf("expected 2 active events, got %d", got)
	}
}

func TestExecutorDeduplicatesByCompositeKey(t *testing.T) {
	bus := pubsub.New()
	exec := NewExecutor(bus)
	defer exec.Close()

	// Same asset at two checkpoints is two distinct activations
	exec.EnterScene(testScene())
	fire(bus, "cp1")
	fire(bus, "cp2")

	active := exec.Active()
	if len(active) != 3 {
		t.Fatalf("expected 3 active events, got %d", len(active))
	}
	seen := map[entities.EventKey]bool{}
	for _, ev := range active {
		if seen[ev.Key()] {
			t.Fatalf("duplicate key in active set: %+v", ev.Key())
		}
		seen[ev.Key()] = true
	}
}

func TestExecutorSyncResetEmptiesSet(t *testing.T) {
	bus := pubsub.New()
	exec := NewExecutor(bus)
	defer exec.Close()
	exec.EnterScene(testScene())

	fire(bus, "cp1")
	bus.Publish(playback.TopicSyncReset, nil)

	if got := len(exec.Active()); got != 0 {
		t.Fatalf("expected empty set after sync-reset, got %d", got)
	}

	// After the reset the same checkpoint activates again
	fire(bus, "cp1")
	if got := len(exec.Active()); got != 2 {
		t.Fatalf("expected reactivation after reset, got %d", got)
	}
}

func TestExecutorSceneChangeClears(t *testing.T) {
	bus := pubsub.New()
	exec := NewExecutor(bus)
	defer exec.Close()
	exec.EnterScene(testScene())
	fire(bus, "cp1")

	exec.EnterScene(&entities.Scene{SceneID: "s2"})
	if got := len(exec.Active()); got != 0 {
		t.Fatalf("expected empty set after scene change, got %d", got)
	}
}

func TestExecutorDanglingCheckpointIsNoop(t *testing.T) {
	bus := pubsub.New()
	exec := NewExecutor(bus)
	defer exec.Close()
	exec.EnterScene(testScene())

	fire(bus, "no-such-checkpoint")
	if got := len(exec.Active()); got != 0 {
		t.Fatalf("expected nothing activated, got %d", got)
	}
}

func TestAnimationPolicy(t *testing.T) {
	cases := []struct {
		evType entities.VisualEventType
		want   AnimationKind
	}{
		{entities.VisualEventDraw, AnimationReveal},
		{entities.VisualEventFadeIn, AnimationFade},
		{entities.VisualEventHighlight, AnimationScalePulse},
		{entities.VisualEventMove, AnimationMove},
		{entities.VisualEventPause, AnimationReveal},
		{entities.VisualEventQuiz, AnimationQuizReveal},
	}

	for _, tc := range cases {
		anim := animationFor(entities.VisualEvent{Type: tc.evType})
		if anim.Kind != tc.want {
			t.Fatalf("type %s: expected %s, got %s", tc.evType, tc.want, anim.Kind)
		}
		if anim.Duration != DefaultAnimationSec {
			t.Fatalf("type %s: expected default duration, got %f", tc.evType, anim.Duration)
		}
	}

	custom := animationFor(entities.VisualEvent{
		Type:   entities.VisualEventFadeIn,
		Params: map[string]interface{}{"duration": 1.25},
	})
	if custom.Duration != 1.25 {
		t.Fatalf("expected params.duration honored, got %f", custom.Duration)
	}
}
