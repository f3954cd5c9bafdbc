package playback

import (
	"sync"

	"github.com/inkline-team/inkline/internal/domain/entities"
	"github.com/inkline-team/inkline/internal/usecase/schedule"
	"github.com/inkline-team/inkline/pkg/pubsub"
)

// Bus topics published by the synchronizer
const (
	// TopicCheckpointReached carries an entities.AudioCheckpoint, at most
	// once per checkpoint per forward playback pass
	TopicCheckpointReached pubsub.Topic = "sync.checkpoint"
	// TopicSyncReset fires on seek or end, before any checkpoint that
	// follows, so dependent state never survives a seek
	TopicSyncReset pubsub.Topic = "sync.reset"
)

// Synchronizer maps continuous position samples to discrete
// checkpoint-reached transitions. A checkpoint fires when a sample lands
// within the tolerance window of its timestamp and it was not the last one
// fired; seeks and ends clear that memory, so each checkpoint fires at most
// once per pass.
type Synchronizer struct {
	bus       *pubsub.Bus
	tolerance float64

	mu        sync.Mutex
	schedule  []entities.AudioCheckpoint
	lastFired string
	hasFired  bool

	unsubs []func()
}

// NewSynchronizer wires a synchronizer to the bus. Tolerance ≤ 0 falls back
// to the default drift budget.
func NewSynchronizer(bus *pubsub.Bus, checkpoints []entities.AudioCheckpoint, tolerance float64) *Synchronizer {
	if tolerance <= 0 {
		tolerance = schedule.DefaultToleranceSec
	}
	s := &Synchronizer{
		bus:       bus,
		tolerance: tolerance,
		schedule:  checkpoints,
	}

	s.unsubs = append(s.unsubs,
		bus.Subscribe(TopicPositionSample, func(payload interface{}) {
			if sample, ok := payload.(PositionSample); ok {
				s.advance(sample.Position)
			}
		}),
		bus.Subscribe(TopicSeeking, func(interface{}) { s.Reset() }),
		bus.Subscribe(TopicEnded, func(interface{}) { s.Reset() }),
	)

	return s
}

// advance evaluates one position sample against the schedule
func (s *Synchronizer) advance(position float64) {
	s.mu.Lock()
	cp, found := schedule.FindAtTime(s.schedule, position, s.tolerance)
	if !found || (s.hasFired && cp.ID == s.lastFired) {
		s.mu.Unlock()
		return
	}
	s.lastFired = cp.ID
	s.hasFired = true
	s.mu.Unlock()

	s.bus.Publish(TopicCheckpointReached, cp)
}

// Reset clears the fired-checkpoint memory and signals sync-reset so
// dependent state is invalidated before any further transitions
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	s.lastFired = ""
	s.hasFired = false
	s.mu.Unlock()

	s.bus.Publish(TopicSyncReset, nil)
}

// ReplaceSchedule swaps the schedule (lesson change) and resets
func (s *Synchronizer) ReplaceSchedule(checkpoints []entities.AudioCheckpoint) {
	s.mu.Lock()
	s.schedule = checkpoints
	s.mu.Unlock()
	s.Reset()
}

// LastFired returns the id of the last fired checkpoint, if any
func (s *Synchronizer) LastFired() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFired, s.hasFired
}

// Close detaches the synchronizer from the bus
func (s *Synchronizer) Close() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
}
