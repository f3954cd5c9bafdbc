package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/inkline-team/inkline/internal/domain/entities"
	"github.com/inkline-team/inkline/pkg/pubsub"
)

// TopicPersisted fires after a session record write succeeds, carrying the
// lesson id
const TopicPersisted pubsub.Topic = "session.persisted"

// Status is the session lifecycle state surfaced to the UI shell
type Status string

const (
	StatusHydrating      Status = "hydrating"
	StatusReady          Status = "ready"
	StatusConflictActive Status = "conflict_active"
	StatusConflictStale  Status = "conflict_stale"
	StatusAbandoned      Status = "abandoned"
)

// SnapshotFunc gathers the live composite state at write time. The debounced
// writer calls it when the write actually happens, not when the dirty flag
// was set, so the final write always reflects the most recent values.
type SnapshotFunc func() entities.SessionSnapshot

// Manager owns one tab's live session for one lesson: ownership arbitration
// on entry, debounced best-effort persistence while active, and teardown.
// The tab id and clock are injected at construction, not module state.
type Manager struct {
	svc      *Service
	bus      *pubsub.Bus
	logger   *zap.Logger
	lessonID string
	tabID    string
	snapshot SnapshotFunc
	debounce time.Duration

	mu        sync.Mutex
	status    Status
	dirty     bool
	timer     *time.Timer
	closed    bool
	unsubs    []func()
}

// NewManager creates a manager in the hydrating state
func NewManager(
	svc *Service,
	bus *pubsub.Bus,
	logger *zap.Logger,
	lessonID, tabID string,
	snapshot SnapshotFunc,
	debounce time.Duration,
) *Manager {
	return &Manager{
		svc:      svc,
		bus:      bus,
		logger:   logger,
		lessonID: lessonID,
		tabID:    tabID,
		snapshot: snapshot,
		debounce: debounce,
		status:   StatusHydrating,
	}
}

// Start runs the ownership algorithm for lesson entry. No conflict and stale
// conflicts claim immediately and hydrate; an active conflict is surfaced to
// the caller as a decision point (Claim or Abandon) without touching the
// other tab's pointer.
func (m *Manager) Start(ctx context.Context) (Status, *entities.SessionRecord, error) {
	conflict, err := m.svc.CheckOwnership(ctx, m.lessonID, m.tabID)
	if err != nil {
		return m.setStatus(StatusHydrating), nil, err
	}

	switch conflict {
	case ConflictActive:
		return m.setStatus(StatusConflictActive), nil, nil
	case ConflictStale:
		m.logger.Info("auto-claiming stale session",
			zap.String("lesson_id", m.lessonID), zap.String("tab_id", m.tabID))
	}

	return m.claimAndHydrate(ctx)
}

// Claim forces ownership after a conflict was surfaced
func (m *Manager) Claim(ctx context.Context) (Status, *entities.SessionRecord, error) {
	return m.claimAndHydrate(ctx)
}

// Abandon gives up on entering the lesson. The other tab's pointer and
// record stay untouched.
func (m *Manager) Abandon() Status {
	m.mu.Lock()
	m.dirty = false
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()
	return m.setStatus(StatusAbandoned)
}

func (m *Manager) claimAndHydrate(ctx context.Context) (Status, *entities.SessionRecord, error) {
	if err := m.svc.Claim(ctx, m.lessonID, m.tabID); err != nil {
		// Best-effort arbitration: a failed pointer write never blocks the
		// lesson from loading.
		m.logger.Warn("session claim write failed", zap.Error(err))
	}
	record := m.svc.Hydrate(ctx, m.lessonID)
	return m.setStatus(StatusReady), record, nil
}

// Watch subscribes the dirty flag to state-change topics. Every publication
// on any of them arms the debounced writer.
func (m *Manager) Watch(topics ...pubsub.Topic) {
	for _, topic := range topics {
		unsub := m.bus.Subscribe(topic, func(interface{}) {
			m.MarkDirty()
		})
		m.mu.Lock()
		m.unsubs = append(m.unsubs, unsub)
		m.mu.Unlock()
	}
}

// MarkDirty notes unsaved state and arms the debounced writer. Bursts within
// the debounce window coalesce into a single physical write.
func (m *Manager) MarkDirty() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.status != StatusReady {
		return
	}
	m.dirty = true
	if m.timer == nil {
		m.timer = time.AfterFunc(m.debounce, m.flushDebounced)
	}
}

// flushDebounced is the timer callback performing one physical write
func (m *Manager) flushDebounced() {
	m.mu.Lock()
	m.timer = nil
	if m.closed || !m.dirty {
		m.mu.Unlock()
		return
	}
	m.dirty = false
	m.mu.Unlock()

	// Snapshot reads the live values now, at write time
	snap := m.snapshot()
	if err := m.svc.Persist(context.Background(), m.lessonID, snap); err != nil {
		// Best-effort persistence: no retry queue
		m.logger.Warn("debounced session write failed",
			zap.String("lesson_id", m.lessonID), zap.Error(err))
		return
	}
	m.bus.Publish(TopicPersisted, m.lessonID)
}

// Flush writes the current snapshot immediately if there is unsaved state
func (m *Manager) Flush(ctx context.Context) error {
	m.mu.Lock()
	if m.closed || m.status != StatusReady || !m.dirty {
		m.mu.Unlock()
		return nil
	}
	m.dirty = false
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()

	if err := m.svc.Persist(ctx, m.lessonID, m.snapshot()); err != nil {
		return err
	}
	m.bus.Publish(TopicPersisted, m.lessonID)
	return nil
}

// Clear deletes the lesson's session state ("start new material") and drops
// any pending write
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.dirty = false
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()

	return m.svc.Clear(ctx, m.lessonID)
}

// Status returns the current lifecycle state
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Close tears the manager down: a final flush of unsaved state, then all bus
// subscriptions are released
func (m *Manager) Close() {
	if err := m.Flush(context.Background()); err != nil {
		m.logger.Warn("final session flush failed",
			zap.String("lesson_id", m.lessonID), zap.Error(err))
	}

	m.mu.Lock()
	m.closed = true
	unsubs := m.unsubs
	m.unsubs = nil
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

func (m *Manager) setStatus(status Status) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	return status
}
