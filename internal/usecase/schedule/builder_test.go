package schedule

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/inkline-team/inkline/internal/domain/entities"
)

func scriptWithSegments(segments ...entities.VoiceoverSegment) *entities.LessonScript {
	return &entities.LessonScript{
		LessonDurationSec: 60,
		Scenes: []entities.Scene{
			{SceneID: "scene-1", Voiceover: segments},
		},
	}
}

func TestBuildTwoSegmentTimestamps(t *testing.T) {
	script := scriptWithSegments(
		entities.VoiceoverSegment{Text: "Hello world", CheckpointID: "cp1"},
		entities.VoiceoverSegment{Text: "Goodbye now", CheckpointID: "cp2"},
	)

	cps := Build(script)
	if len(cps) != 2 {
		t.Fatalf("expected 2 checkpoints, got %d", len(cps))
	}
	if cps[0].Timestamp != 0 {
		t.Fatalf("expected first checkpoint at t=0, got %f", cps[0].Timestamp)
	}
	// 2 words / 2.5 wps = 0.8s, plus 0.3s pause
	if math.Abs(cps[1].Timestamp-1.1) > 1e-9 {
		t.Fatalf("expected second checkpoint at t=1.1, got %f", cps[1].Timestamp)
	}
	if cps[0].ID != "cp1" || cps[1].ID != "cp2" {
		t.Fatalf("unexpected checkpoint ids: %s, %s", cps[0].ID, cps[1].ID)
	}
	if cps[0].Text != "Hello world" {
		t.Fatalf("unexpected checkpoint text: %q", cps[0].Text)
	}
}

func TestBuildAccumulatesAcrossScenes(t *testing.T) {
	script := &entities.LessonScript{
		Scenes: []entities.Scene{
			{SceneID: "s1", Voiceover: []entities.VoiceoverSegment{{Text: "one two three four five", CheckpointID: "a"}}},
			{SceneID: "s2", Voiceover: []entities.VoiceoverSegment{{Text: "six", CheckpointID: "b"}}},
		},
	}

	cps := Build(script)
	if len(cps) != 2 {
		t.Fatalf("expected 2 checkpoints, got %d", len(cps))
	}
	// 5 words / 2.5 = 2.0s + 0.3s pause; the clock does not reset per scene
	if math.Abs(cps[1].Timestamp-2.3) > 1e-9 {
		t.Fatalf("expected cross-scene checkpoint at t=2.3, got %f", cps[1].Timestamp)
	}
}

func TestBuildEmptyTextCountsAsOneWord(t *testing.T) {
	script := scriptWithSegments(
		entities.VoiceoverSegment{Text: "   ", CheckpointID: "blank"},
		entities.VoiceoverSegment{Text: "next", CheckpointID: "after"},
	)

	cps := Build(script)
	// 1 word minimum: 1/2.5 + 0.3 = 0.7
	if math.Abs(cps[1].Timestamp-0.7) > 1e-9 {
		t.Fatalf("expected blank segment to advance by 0.7s, got %f", cps[1].Timestamp)
	}
}

func TestBuildDeterministic(t *testing.T) {
	script := scriptWithSegments(
		entities.VoiceoverSegment{Text: "alpha beta gamma", CheckpointID: "x"},
		entities.VoiceoverSegment{Text: "delta", CheckpointID: "y"},
	)

	first := Build(script)
	second := Build(script)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical output on repeated builds:\n%v\n%v", first, second)
	}
}

func TestBuildTimestampsNonDecreasingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sceneCount := rapid.IntRange(1, 5).Draw(t, "scenes")
		script := &entities.LessonScript{}
		for i := 0; i < sceneCount; i++ {
			segCount := rapid.IntRange(0, 8).Draw(t, fmt.Sprintf("segments%d", i))
			scene := entities.Scene{SceneID: fmt.Sprintf("s%d", i)}
			for j := 0; j < segCount; j++ {
				scene.Voiceover = append(scene.Voiceover, entities.VoiceoverSegment{
					Text:         rapid.StringMatching(`[a-z ]{0,40}`).Draw(t, fmt.Sprintf("text%d_%d", i, j)),
					CheckpointID: fmt.Sprintf("cp%d_%d", i, j),
				})
			}
			script.Scenes = append(script.Scenes, scene)
		}

		cps := Build(script)
		for i := 1; i < len(cps); i++ {
			if cps[i].Timestamp < cps[i-1].Timestamp {
				t.Fatalf("timestamps decreased at %d: %f < %f", i, cps[i].Timestamp, cps[i-1].Timestamp)
			}
		}
	})
}

func TestFindAtTimeReturnsFirstMatch(t *testing.T) {
	cps := []entities.AudioCheckpoint{
		{ID: "a", Timestamp: 0},
		{ID: "b", Timestamp: 0.4},
		{ID: "c", Timestamp: 5},
	}

	// 0.3 is within tolerance of both a and b; first match wins
	got, ok := FindAtTime(cps, 0.3, 0.5)
	if !ok || got.ID != "a" {
		t.Fatalf("expected first match a, got %v ok=%v", got, ok)
	}

	if _, ok := FindAtTime(cps, 2.5, 0.5); ok {
		t.Fatal("expected no match far from any checkpoint")
	}
}

func TestNextAfter(t *testing.T) {
	cps := []entities.AudioCheckpoint{
		{ID: "a", Timestamp: 0},
		{ID: "b", Timestamp: 1.1},
	}

	got, ok := NextAfter(cps, 0)
	if !ok || got.ID != "b" {
		t.Fatalf("expected b, got %v ok=%v", got, ok)
	}
	if _, ok := NextAfter(cps, 1.1); ok {
		t.Fatal("expected no checkpoint strictly after the last timestamp")
	}
}

func TestInRange(t *testing.T) {
	cps := []entities.AudioCheckpoint{
		{ID: "a", Timestamp: 0},
		{ID: "b", Timestamp: 1.1},
		{ID: "c", Timestamp: 2.2},
	}

	got := InRange(cps, 1.0, 2.2)
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Fatalf("expected [b c], got %v", got)
	}
}
