package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/inkline-team/inkline/errors"
	lessonDto "github.com/inkline-team/inkline/internal/adapter/dto/lesson"
	sessionDto "github.com/inkline-team/inkline/internal/adapter/dto/session"
	"github.com/inkline-team/inkline/internal/domain/entities"
	"github.com/inkline-team/inkline/internal/usecase/annotation"
	"github.com/inkline-team/inkline/internal/usecase/compositor"
	"github.com/inkline-team/inkline/internal/usecase/lesson"
	"github.com/inkline-team/inkline/internal/usecase/playback"
	"github.com/inkline-team/inkline/internal/usecase/schedule"
	"github.com/inkline-team/inkline/internal/usecase/session"
	"github.com/inkline-team/inkline/internal/usecase/visual"
	"github.com/inkline-team/inkline/pkg/pubsub"
	"github.com/inkline-team/inkline/pkg/tabtoken"
)

// clientFrame is one inbound message on the playback channel
type clientFrame struct {
	Type string `json:"type"`

	Position float64 `json:"position,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Volume   float64 `json:"volume,omitempty"`
	Reason   string  `json:"reason,omitempty"`
	SceneID  string  `json:"sceneId,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Enabled  bool    `json:"enabled,omitempty"`
	Layer    string  `json:"layer,omitempty"`
	Visible  *bool   `json:"visible,omitempty"`
	Open     bool    `json:"open,omitempty"`
}

// serverFrame is one outbound message on the playback channel
type serverFrame struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// layersPayload reports layer state after a toggle
type layersPayload struct {
	Visibility entities.LayerVisibility `json:"visibility"`
	AIDrawings float64                  `json:"aiDrawingsOpacity"`
	MyNotes    float64                  `json:"myNotesOpacity"`
}

// helloPayload is the first frame after a successful start
type helloPayload struct {
	Status   session.Status                   `json:"status"`
	Session  *sessionDto.SessionStateResponse `json:"session,omitempty"`
	AudioURL string                           `json:"audio_url,omitempty"`
	Schedule []lessonDto.CheckpointResponse   `json:"schedule,omitempty"`
}

// Channel upgrades playback connections and runs one engine per connection
type Channel struct {
	lessons   *lesson.Service
	sessions  *session.Service
	tokens    *tabtoken.Manager
	logger    *zap.Logger
	tolerance float64
	debounce  time.Duration

	upgrader websocket.Upgrader
}

// NewChannel creates the playback channel handler
func NewChannel(
	lessons *lesson.Service,
	sessions *session.Service,
	tokens *tabtoken.Manager,
	logger *zap.Logger,
	toleranceSec float64,
	debounce time.Duration,
) *Channel {
	return &Channel{
		lessons:   lessons,
		sessions:  sessions,
		tokens:    tokens,
		logger:    logger,
		tolerance: toleranceSec,
		debounce:  debounce,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Serve handles GET /v1/lessons/:id/channel
func (h *Channel) Serve(c echo.Context) error {
	ctx := c.Request().Context()

	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return RespondError(c, errors.ErrInvalidArgument("Invalid lesson id"))
	}

	token := ExtractToken(c.Request())
	tabID, err := h.tokens.Verify(token)
	if err != nil {
		return RespondError(c, errors.ErrInvalidTabToken())
	}

	stored, script, err := h.lessons.Get(ctx, lessonID)
	if err != nil {
		return RespondError(c, err)
	}

	audioURL, err := h.lessons.AudioURL(ctx, stored)
	if err != nil {
		return RespondError(c, errors.ErrAssetUnavailable(stored.AudioObjectKey, err))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return nil
	}

	eng := newEngine(conn, h.sessions, h.logger,
		lessonID.String(), tabID, script, audioURL, h.tolerance, h.debounce)
	eng.run(ctx)
	return nil
}

// engine bundles the per-connection playback state machine: clock,
// synchronizer, visual executor, annotation capture, layer compositor and
// the session manager, all coupled over one private bus.
type engine struct {
	conn   *websocket.Conn
	logger *zap.Logger

	lessonID string
	tabID    string
	script   *entities.LessonScript
	audioURL string

	bus     *pubsub.Bus
	clock   *playback.Clock
	sync    *playback.Synchronizer
	exec    *visual.Executor
	capture *annotation.Capture
	layers  *compositor.Compositor
	manager *session.Manager

	writeMu sync.Mutex

	mu             sync.Mutex
	transcriptOpen bool
}

func newEngine(
	conn *websocket.Conn,
	sessions *session.Service,
	logger *zap.Logger,
	lessonID, tabID string,
	script *entities.LessonScript,
	audioURL string,
	tolerance float64,
	debounce time.Duration,
) *engine {
	bus := pubsub.New()

	e := &engine{
		conn:     conn,
		logger:   logger.With(zap.String("lesson_id", lessonID), zap.String("tab_id", tabID)),
		lessonID: lessonID,
		tabID:    tabID,
		script:   script,
		audioURL: audioURL,
		bus:      bus,
		clock:    playback.NewClock(bus, logger),
		sync:     playback.NewSynchronizer(bus, schedule.Build(script), tolerance),
		exec:     visual.NewExecutor(bus),
		capture:  annotation.NewCapture(bus),
		layers:   compositor.New(),
	}

	e.manager = session.NewManager(sessions, bus, logger, lessonID, tabID,
		e.snapshot, debounce)

	if len(script.Scenes) > 0 {
		e.exec.EnterScene(&script.Scenes[0])
	}

	return e
}

// snapshot gathers the live composite state for the debounced writer
func (e *engine) snapshot() entities.SessionSnapshot {
	e.mu.Lock()
	transcriptOpen := e.transcriptOpen
	e.mu.Unlock()

	return entities.SessionSnapshot{
		PlaybackPosition:    e.clock.Position(),
		AnnotationLines:     e.capture.Lines(),
		LayerVisibility:     e.layers.Snapshot(),
		TranscriptPanelOpen: transcriptOpen,
	}
}

// run drives the engine until the connection closes
func (e *engine) run(ctx context.Context) {
	defer e.teardown()

	e.forwardBusEvents()

	status, record, err := e.manager.Start(ctx)
	if err != nil {
		e.logger.Warn("session start failed", zap.Error(err))
	}

	e.sendHello(status, record)

	// Effects that cross stores: annotation pause requests pause the clock,
	// playback starting cancels an in-progress gesture.
	e.bus.Subscribe(annotation.TopicPauseRequested, func(interface{}) {
		e.clock.Pause()
	})
	e.bus.Subscribe(playback.TopicPlayState, func(payload interface{}) {
		if state, ok := payload.(playback.PlayState); ok && state.Playing {
			e.capture.HandlePlaybackStarted()
		}
	})

	// State changes that arm the debounced session writer
	e.manager.Watch(
		playback.TopicPositionSample,
		playback.TopicSeeking,
		annotation.TopicLineCommitted,
	)

	for {
		var frame clientFrame
		if err := e.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				e.logger.Warn("playback channel closed unexpectedly", zap.Error(err))
			}
			return
		}
		e.dispatch(ctx, frame)
	}
}

// dispatch applies one client frame to the engine
func (e *engine) dispatch(ctx context.Context, frame clientFrame) {
	switch frame.Type {
	case "metadata":
		e.clock.SetMetadata(frame.Duration)

	case "position":
		e.clock.HandleSample(frame.Position)

	case "play":
		e.clock.Play()

	case "pause":
		e.clock.Pause()

	case "playFailed":
		e.clock.FailPlayback(frame.Reason)

	case "seek":
		e.clock.Seek(frame.Position)

	case "ended":
		e.clock.Ended()

	case "volume":
		e.clock.SetVolume(frame.Volume)

	case "enterScene":
		if scene := e.script.SceneByID(frame.SceneID); scene != nil {
			e.exec.EnterScene(scene)
		}

	case "annotationMode":
		e.capture.SetMode(frame.Enabled, e.clock.Playing())

	case "gestureBegin":
		if err := e.capture.BeginGesture(entities.Point{X: frame.X, Y: frame.Y}, e.clock.Playing()); err != nil {
			e.send(serverFrame{Type: "gestureRejected", Payload: map[string]string{"reason": err.Error()}})
		}

	case "gestureMove":
		e.capture.MoveGesture(entities.Point{X: frame.X, Y: frame.Y})

	case "gestureEnd":
		e.capture.EndGesture(entities.Point{X: frame.X, Y: frame.Y})

	case "gestureLeave":
		e.capture.LeaveGesture()

	case "setLayer":
		if frame.Visible != nil {
			e.layers.SetVisible(compositor.Layer(frame.Layer), *frame.Visible)
			e.manager.MarkDirty()
			e.sendLayers()
		}

	case "toggleLayer":
		e.layers.Toggle(compositor.Layer(frame.Layer))
		e.manager.MarkDirty()
		e.sendLayers()

	case "transcriptPanel":
		e.mu.Lock()
		e.transcriptOpen = frame.Open
		e.mu.Unlock()
		e.manager.MarkDirty()

	case "claim":
		status, record, err := e.manager.Claim(ctx)
		if err != nil {
			e.logger.Warn("claim failed", zap.Error(err))
		}
		e.sendHello(status, record)

	case "abandon":
		status := e.manager.Abandon()
		e.send(serverFrame{Type: "status", Payload: map[string]interface{}{"status": status}})

	case "clear":
		if err := e.manager.Clear(ctx); err != nil {
			e.logger.Warn("session clear failed", zap.Error(err))
		}
		e.capture.Clear()
		e.send(serverFrame{Type: "cleared"})

	case "flush":
		if err := e.manager.Flush(ctx); err != nil {
			e.logger.Warn("session flush failed", zap.Error(err))
		}

	default:
		e.logger.Debug("unknown frame type", zap.String("type", frame.Type))
	}
}

// forwardBusEvents mirrors engine-side bus publications onto the socket
func (e *engine) forwardBusEvents() {
	e.bus.Subscribe(playback.TopicCheckpointReached, func(payload interface{}) {
		e.send(serverFrame{Type: "checkpoint", Payload: payload})
	})
	e.bus.Subscribe(playback.TopicSyncReset, func(interface{}) {
		e.send(serverFrame{Type: "syncReset"})
	})
	e.bus.Subscribe(playback.TopicPlayState, func(payload interface{}) {
		e.send(serverFrame{Type: "playState", Payload: payload})
	})
	e.bus.Subscribe(playback.TopicPlaybackError, func(payload interface{}) {
		e.send(serverFrame{Type: "playbackError", Payload: payload})
	})
	e.bus.Subscribe(playback.TopicEnded, func(interface{}) {
		e.send(serverFrame{Type: "ended"})
	})
	e.bus.Subscribe(visual.TopicEventsActivated, func(payload interface{}) {
		e.send(serverFrame{Type: "eventsActivated", Payload: payload})
	})
	e.bus.Subscribe(annotation.TopicPauseRequested, func(interface{}) {
		e.send(serverFrame{Type: "pauseRequested"})
	})
	e.bus.Subscribe(annotation.TopicLineCommitted, func(payload interface{}) {
		e.send(serverFrame{Type: "lineCommitted", Payload: payload})
	})
	e.bus.Subscribe(session.TopicPersisted, func(interface{}) {
		e.send(serverFrame{Type: "persisted"})
	})
}

// sendHello reports the session status and, when ready, restores the engine
// from the hydrated record before echoing it to the client
func (e *engine) sendHello(status session.Status, record *entities.SessionRecord) {
	payload := helloPayload{Status: status}

	if status == session.StatusReady && record != nil {
		e.capture.Replace(record.AnnotationLines.Data())
		e.layers.Restore(record.LayerVisibility.Data())
		e.mu.Lock()
		e.transcriptOpen = record.TranscriptPanelOpen
		e.mu.Unlock()

		resp := sessionDto.FromRecord(record)
		payload.Session = &resp
		payload.AudioURL = e.audioURL
		payload.Schedule = lessonDto.CheckpointsFromEntities(schedule.Build(e.script))
	}

	e.send(serverFrame{Type: "hello", Payload: payload})
}

func (e *engine) sendLayers() {
	e.send(serverFrame{Type: "layers", Payload: layersPayload{
		Visibility: e.layers.Snapshot(),
		AIDrawings: e.layers.Opacity(compositor.LayerAIDrawings),
		MyNotes:    e.layers.Opacity(compositor.LayerMyNotes),
	}})
}

func (e *engine) send(frame serverFrame) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if err := e.conn.WriteJSON(frame); err != nil {
		e.logger.Debug("websocket write failed", zap.Error(err))
	}
}

func (e *engine) teardown() {
	e.manager.Close()
	e.exec.Close()
	e.sync.Close()
	_ = e.conn.Close()
}
