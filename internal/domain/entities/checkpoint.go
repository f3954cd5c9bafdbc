package entities

// AudioCheckpoint is a named, timestamped point in the narration timeline.
// Checkpoints are derived from voiceover segments at lesson load, never
// authored directly. Timestamps are non-decreasing in schedule order; id
// uniqueness is the author's responsibility.
type AudioCheckpoint struct {
	ID        string  `json:"id"`
	Timestamp float64 `json:"timestampSeconds"`
	Text      string  `json:"text"`
}
