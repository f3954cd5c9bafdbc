package schedule

import (
	"strings"

	"github.com/inkline-team/inkline/internal/domain/entities"
)

const (
	// WordsPerSecond is the estimated narration speech rate
	WordsPerSecond = 2.5
	// SegmentPauseSec is the fixed pause inserted after each segment
	SegmentPauseSec = 0.3
	// DefaultToleranceSec is the drift budget for audio-visual alignment,
	// derived from the ±500ms acceptance bound over a 3-minute lesson
	DefaultToleranceSec = 0.5
)

// Build derives the checkpoint schedule from a lesson script. Scenes and
// voiceover segments are walked in script order with a cumulative clock, so
// timestamps are non-decreasing. Checkpoint ids are taken verbatim from the
// segments; duplicates are not collapsed. Deterministic and side-effect free:
// calling it twice on the same script yields identical output.
func Build(script *entities.LessonScript) []entities.AudioCheckpoint {
	var checkpoints []entities.AudioCheckpoint
	cumulative := 0.0

	for _, scene := range script.Scenes {
		for _, seg := range scene.Voiceover {
			checkpoints = append(checkpoints, entities.AudioCheckpoint{
				ID:        seg.CheckpointID,
				Timestamp: cumulative,
				Text:      seg.Text,
			})
			cumulative += estimateDuration(seg.Text)
		}
	}

	return checkpoints
}

// TotalDuration estimates the narration length of the script in seconds
func TotalDuration(script *entities.LessonScript) float64 {
	total := 0.0
	for _, scene := range script.Scenes {
		for _, seg := range scene.Voiceover {
			total += estimateDuration(seg.Text)
		}
	}
	return total
}

// estimateDuration returns the estimated speaking time of one segment plus
// the inter-segment pause. Whitespace-only text still counts as one word, so
// no segment ever has zero duration.
func estimateDuration(text string) float64 {
	words := len(strings.Fields(text))
	if words == 0 {
		words = 1
	}
	return float64(words)/WordsPerSecond + SegmentPauseSec
}

// FindAtTime returns the first checkpoint, in schedule order, whose timestamp
// is within tolerance of t. First match, not closest match: with segments
// shorter than twice the tolerance and coarse sampling a checkpoint can be
// skipped. Kept as specified; see DESIGN.md.
func FindAtTime(checkpoints []entities.AudioCheckpoint, t, tolerance float64) (entities.AudioCheckpoint, bool) {
	for _, cp := range checkpoints {
		if abs(cp.Timestamp-t) <= tolerance {
			return cp, true
		}
	}
	return entities.AudioCheckpoint{}, false
}

// NextAfter returns the first checkpoint strictly later than t
func NextAfter(checkpoints []entities.AudioCheckpoint, t float64) (entities.AudioCheckpoint, bool) {
	for _, cp := range checkpoints {
		if cp.Timestamp > t {
			return cp, true
		}
	}
	return entities.AudioCheckpoint{}, false
}

// InRange returns all checkpoints whose timestamps fall within [start, end]
func InRange(checkpoints []entities.AudioCheckpoint, start, end float64) []entities.AudioCheckpoint {
	var out []entities.AudioCheckpoint
	for _, cp := range checkpoints {
		if cp.Timestamp >= start && cp.Timestamp <= end {
			out = append(out, cp)
		}
	}
	return out
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
