package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/inkline-team/inkline/internal/domain/entities"
	"github.com/inkline-team/inkline/pkg/pubsub"
)

const testDebounce = 20 * time.Millisecond

// liveState simulates the composite stores the snapshot reads from
type liveState struct {
	mu       sync.Mutex
	snapshot entities.SessionSnapshot
}

func (l *liveState) set(snap entities.SessionSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshot = snap
}

func (l *liveState) read() entities.SessionSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot
}

func newTestManager(records *fakeRecordRepo, pointer *fakePointerRepo, tabID string) (*Manager, *liveState, *pubsub.Bus) {
	svc := newTestService(records, pointer)
	bus := pubsub.New()
	state := &liveState{}
	m := NewManager(svc, bus, zap.NewNop(), "L1", tabID, state.read, testDebounce)
	return m, state, bus
}

func TestStartClaimsUnownedLesson(t *testing.T) {
	records := newFakeRecordRepo()
	pointer := &fakePointerRepo{}
	m, _, _ := newTestManager(records, pointer, "tab-a")

	status, record, err := m.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if status != StatusReady {
		t.Fatalf("expected ready, got %s", status)
	}
	if record == nil || record.LessonID != "L1" {
		t.Fatalf("expected hydrated record, got %+v", record)
	}
	if ptr := pointer.current(); ptr == nil || ptr.TabID != "tab-a" {
		t.Fatalf("expected pointer claimed by tab-a, got %+v", ptr)
	}
}

func TestStartSurfacesActiveConflictWithoutClaiming(t *testing.T) {
	records := newFakeRecordRepo()
	pointer := &fakePointerRepo{}
	svc := newTestService(records, pointer)
	if err := svc.Claim(context.Background(), "L1", "tab-a"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	m, _, _ := newTestManager(records, pointer, "tab-b")
	status, record, err := m.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if status != StatusConflictActive {
		t.Fatalf("expected conflict_active, got %s", status)
	}
	if record != nil {
		t.Fatal("expected no hydration before the conflict is resolved")
	}
	if ptr := pointer.current(); ptr.TabID != "tab-a" {
		t.Fatalf("expected other tab's pointer untouched, got %+v", ptr)
	}
}

func TestStartAutoClaimsStaleSession(t *testing.T) {
	records := newFakeRecordRepo()
	pointer := &fakePointerRepo{}
	pointer.Set(context.Background(), &entities.SessionPointer{
		LessonID:  "L1",
		TabID:     "tab-a",
		Timestamp: time.Now().Add(-10 * time.Minute),
	})

	m, _, _ := newTestManager(records, pointer, "tab-b")
	status, _, err := m.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if status != StatusReady {
		t.Fatalf("expected stale claim to proceed to ready, got %s", status)
	}
	if ptr := pointer.current(); ptr.TabID != "tab-b" {
		t.Fatalf("expected pointer taken over, got %+v", ptr)
	}
}

func TestClaimAfterConflictTakesOwnership(t *testing.T) {
	records := newFakeRecordRepo()
	pointer := &fakePointerRepo{}
	svc := newTestService(records, pointer)
	if err := svc.Claim(context.Background(), "L1", "tab-a"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	m, _, _ := newTestManager(records, pointer, "tab-b")
	if status, _, _ := m.Start(context.Background()); status != StatusConflictActive {
		t.Fatalf("expected conflict, got %s", status)
	}

	status, record, err := m.Claim(context.Background())
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if status != StatusReady || record == nil {
		t.Fatalf("expected forced claim to hydrate, got %s %v", status, record)
	}
	if ptr := pointer.current(); ptr.TabID != "tab-b" {
		t.Fatalf("expected pointer overwritten, got %+v", ptr)
	}
}

func TestAbandonLeavesOtherTabUntouched(t *testing.T) {
	records := newFakeRecordRepo()
	pointer := &fakePointerRepo{}
	svc := newTestService(records, pointer)
	if err := svc.Claim(context.Background(), "L1", "tab-a"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	m, _, _ := newTestManager(records, pointer, "tab-b")
	m.Start(context.Background())
	if status := m.Abandon(); status != StatusAbandoned {
		t.Fatalf("expected abandoned, got %s", status)
	}
	if ptr := pointer.current(); ptr.TabID != "tab-a" {
		t.Fatalf("expected other tab's claim intact, got %+v", ptr)
	}
}

func TestDebouncedWriterCoalescesAndReadsLatest(t *testing.T) {
	records := newFakeRecordRepo()
	m, state, _ := newTestManager(records, &fakePointerRepo{}, "tab-a")
	if _, _, err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer m.Close()

	// A burst of changes inside the debounce window
	state.set(entities.SessionSnapshot{PlaybackPosition: 1})
	m.MarkDirty()
	state.set(entities.SessionSnapshot{PlaybackPosition: 2})
	m.MarkDirty()
	state.set(entities.SessionSnapshot{PlaybackPosition: 3, TranscriptPanelOpen: true})
	m.MarkDirty()

	time.Sleep(5 * testDebounce)

	if got := records.saveCount(); got != 1 {
		t.Fatalf("expected one physical write for the burst, got %d", got)
	}
	rec, err := records.Find(context.Background(), "L1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	// The write reflects the values at write time, not at dirty time
	if rec.PlaybackPosition != 3 || !rec.TranscriptPanelOpen {
		t.Fatalf("expected latest snapshot persisted, got %+v", rec)
	}
}

func TestWatchMarksDirtyFromBusTopics(t *testing.T) {
	records := newFakeRecordRepo()
	m, state, bus := newTestManager(records, &fakePointerRepo{}, "tab-a")
	if _, _, err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer m.Close()

	const topic = pubsub.Topic("test.changed")
	m.Watch(topic)

	state.set(entities.SessionSnapshot{PlaybackPosition: 7})
	bus.Publish(topic, nil)

	time.Sleep(5 * testDebounce)
	rec, err := records.Find(context.Background(), "L1")
	if err != nil {
		t.Fatalf("expected a write triggered via the bus: %v", err)
	}
	if rec.PlaybackPosition != 7 {
		t.Fatalf("expected position 7, got %f", rec.PlaybackPosition)
	}
}

func TestWriteFailureIsNonFatal(t *testing.T) {
	records := newFakeRecordRepo()
	records.saveErr = errors.New("disk full")
	m, _, _ := newTestManager(records, &fakePointerRepo{}, "tab-a")
	if _, _, err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer m.Close()

	m.MarkDirty()
	time.Sleep(5 * testDebounce)

	// Recovery: the next change after the failure still schedules a write
	records.saveErr = nil
	m.MarkDirty()
	time.Sleep(5 * testDebounce)
	if got := records.saveCount(); got != 1 {
		t.Fatalf("expected a successful write after recovery, got %d", got)
	}
}

func TestDirtyIgnoredBeforeReady(t *testing.T) {
	records := newFakeRecordRepo()
	m, _, _ := newTestManager(records, &fakePointerRepo{}, "tab-a")

	m.MarkDirty()
	time.Sleep(5 * testDebounce)
	if got := records.saveCount(); got != 0 {
		t.Fatalf("expected no writes before hydration, got %d", got)
	}
}

func TestCloseFlushesUnsavedState(t *testing.T) {
	records := newFakeRecordRepo()
	m, state, _ := newTestManager(records, &fakePointerRepo{}, "tab-a")
	if _, _, err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	state.set(entities.SessionSnapshot{PlaybackPosition: 12})
	m.MarkDirty()
	m.Close()

	rec, err := records.Find(context.Background(), "L1")
	if err != nil {
		t.Fatalf("expected flush on close: %v", err)
	}
	if rec.PlaybackPosition != 12 {
		t.Fatalf("expected position 12, got %f", rec.PlaybackPosition)
	}
}
