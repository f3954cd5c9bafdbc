package playback

import (
	"sync"

	"go.uber.org/zap"

	"github.com/inkline-team/inkline/pkg/pubsub"
)

// Bus topics published by the playback clock
const (
	// TopicPositionSample carries a PositionSample on every source update
	TopicPositionSample pubsub.Topic = "playback.position"
	// TopicMetadataReady carries a Metadata once the duration is known
	TopicMetadataReady pubsub.Topic = "playback.metadata"
	// TopicSeeking fires when the position jumps discontinuously
	TopicSeeking pubsub.Topic = "playback.seeking"
	// TopicEnded fires when the source reaches its natural end
	TopicEnded pubsub.Topic = "playback.ended"
	// TopicPlayState carries a PlayState on play/pause intent changes
	TopicPlayState pubsub.Topic = "playback.playstate"
	// TopicPlaybackError carries a string describing a failed start
	TopicPlaybackError pubsub.Topic = "playback.error"
)

// PositionSample is one position report from the playback source
type PositionSample struct {
	Position float64
}

// Metadata is published once the source duration is known
type Metadata struct {
	Duration float64
}

// PlayState is published whenever the play/pause intent changes
type PlayState struct {
	Playing bool
}

// Clock adapts a continuously advancing media position source to the engine.
// Samples arrive at the source's native cadence (the client's timeupdate
// signal), not a fixed server tick. All derived consumers subscribe on the
// bus; the clock itself holds only the source's last known state.
type Clock struct {
	bus    *pubsub.Bus
	logger *zap.Logger

	mu            sync.Mutex
	position      float64
	duration      float64
	volume        float64
	playing       bool
	metadataKnown bool
}

// NewClock creates a clock adapter publishing on the given bus
func NewClock(bus *pubsub.Bus, logger *zap.Logger) *Clock {
	return &Clock{
		bus:    bus,
		logger: logger,
		volume: 1.0,
	}
}

// HandleSample records a position report and republishes it
func (c *Clock) HandleSample(position float64) {
	c.mu.Lock()
	c.position = position
	c.mu.Unlock()

	c.bus.Publish(TopicPositionSample, PositionSample{Position: position})
}

// SetMetadata records the source duration and signals metadata-ready
func (c *Clock) SetMetadata(duration float64) {
	c.mu.Lock()
	c.duration = duration
	known := c.metadataKnown
	c.metadataKnown = true
	c.mu.Unlock()

	if !known {
		c.bus.Publish(TopicMetadataReady, Metadata{Duration: duration})
	}
}

// Play records play intent
func (c *Clock) Play() {
	c.setPlaying(true)
}

// Pause records pause intent
func (c *Clock) Pause() {
	c.setPlaying(false)
}

// FailPlayback handles a source that refused to start: the clock transitions
// back to paused instead of reporting a playing state with no actual
// playback, and the error is surfaced to subscribers.
func (c *Clock) FailPlayback(reason string) {
	c.logger.Warn("playback source failed to start", zap.String("reason", reason))
	c.setPlaying(false)
	c.bus.Publish(TopicPlaybackError, reason)
}

// Seek records a discontinuous position jump. The seeking signal is
// published before the new position sample so derived state is invalidated
// first.
func (c *Clock) Seek(position float64) {
	c.mu.Lock()
	c.position = position
	c.mu.Unlock()

	c.bus.Publish(TopicSeeking, PositionSample{Position: position})
	c.bus.Publish(TopicPositionSample, PositionSample{Position: position})
}

// Ended handles the source reaching its natural end: position resets to 0,
// playback stops, and ended carries the same reset semantics as a seek so
// downstream consumers clear derived state.
func (c *Clock) Ended() {
	c.mu.Lock()
	c.position = 0
	wasPlaying := c.playing
	c.playing = false
	c.mu.Unlock()

	c.bus.Publish(TopicEnded, PositionSample{Position: 0})
	if wasPlaying {
		c.bus.Publish(TopicPlayState, PlayState{Playing: false})
	}
}

// SetVolume clamps the volume into [0,1] and returns the applied value
func (c *Clock) SetVolume(v float64) float64 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.mu.Lock()
	c.volume = v
	c.mu.Unlock()
	return v
}

// Position returns the last reported position
func (c *Clock) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Duration returns the source duration, 0 until metadata is known
func (c *Clock) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// Playing returns the current play intent
func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Volume returns the current volume
func (c *Clock) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

func (c *Clock) setPlaying(playing bool) {
	c.mu.Lock()
	changed := c.playing != playing
	c.playing = playing
	c.mu.Unlock()

	if changed {
		c.bus.Publish(TopicPlayState, PlayState{Playing: playing})
	}
}
