package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/inkline-team/inkline/internal/domain/entities"
	usecaseErrors "github.com/inkline-team/inkline/internal/usecase/errors"
)

// fakeRecordRepo is an in-memory SessionRecordRepository with injectable
// failures
type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[string]entities.SessionRecord
	findErr error
	saveErr error
	saves   int
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[string]entities.SessionRecord)}
}

func (f *fakeRecordRepo) Find(_ context.Context, lessonID string) (*entities.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	rec, ok := f.records[lessonID]
	if !ok {
		return nil, usecaseErrors.ErrSessionRecordNotFound
	}
	out := rec
	return &out, nil
}

func (f *fakeRecordRepo) Save(_ context.Context, record *entities.SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records[record.LessonID] = *record
	f.saves++
	return nil
}

func (f *fakeRecordRepo) Delete(_ context.Context, lessonID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, lessonID)
	return nil
}

func (f *fakeRecordRepo) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

// fakePointerRepo is an in-memory SessionPointerRepository
type fakePointerRepo struct {
	mu      sync.Mutex
	pointer *entities.SessionPointer
	getErr  error
}

func (f *fakePointerRepo) Get(_ context.Context) (*entities.SessionPointer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.pointer == nil {
		return nil, usecaseErrors.ErrSessionPointerNotFound
	}
	out := *f.pointer
	return &out, nil
}

func (f *fakePointerRepo) Set(_ context.Context, pointer *entities.SessionPointer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := *pointer
	f.pointer = &p
	return nil
}

func (f *fakePointerRepo) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pointer = nil
	return nil
}

func (f *fakePointerRepo) current() *entities.SessionPointer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pointer
}

func newTestService(records *fakeRecordRepo, pointer *fakePointerRepo) *Service {
	return NewService(records, pointer, zap.NewNop(), 5*time.Minute, 5*time.Second)
}

func TestCheckOwnershipNoPointer(t *testing.T) {
	svc := newTestService(newFakeRecordRepo(), &fakePointerRepo{})

	conflict, err := svc.CheckOwnership(context.Background(), "L1", "tab-a")
	if err != nil {
		t.Fatalf("check ownership: %v", err)
	}
	if conflict != ConflictNone {
		t.Fatalf("expected no conflict, got %s", conflict)
	}
}

func TestCheckOwnershipScenarios(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pointer := &fakePointerRepo{}
	svc := newTestService(newFakeRecordRepo(), pointer)

	// Tab A claims L1 at t=0
	svc.now = func() time.Time { return base }
	if err := svc.Claim(context.Background(), "L1", "tab-a"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	// Tab B at t=60s: active conflict
	svc.now = func() time.Time { return base.Add(60 * time.Second) }
	conflict, err := svc.CheckOwnership(context.Background(), "L1", "tab-b")
	if err != nil || conflict != ConflictActive {
		t.Fatalf("expected active conflict, got %s err=%v", conflict, err)
	}

	// Tab B at t=400s (>5min): stale
	svc.now = func() time.Time { return base.Add(400 * time.Second) }
	conflict, err = svc.CheckOwnership(context.Background(), "L1", "tab-b")
	if err != nil || conflict != ConflictStale {
		t.Fatalf("expected stale conflict, got %s err=%v", conflict, err)
	}

	// A different lesson never conflicts
	conflict, err = svc.CheckOwnership(context.Background(), "L2", "tab-b")
	if err != nil || conflict != ConflictNone {
		t.Fatalf("expected no conflict for other lesson, got %s err=%v", conflict, err)
	}

	// The owning tab re-entering its own lesson never conflicts
	svc.now = func() time.Time { return base.Add(60 * time.Second) }
	conflict, err = svc.CheckOwnership(context.Background(), "L1", "tab-a")
	if err != nil || conflict != ConflictNone {
		t.Fatalf("expected no conflict for own claim, got %s err=%v", conflict, err)
	}
}

func TestCheckOwnershipReadFailureFavorsAvailability(t *testing.T) {
	pointer := &fakePointerRepo{getErr: errors.New("storage down")}
	svc := newTestService(newFakeRecordRepo(), pointer)

	conflict, err := svc.CheckOwnership(context.Background(), "L1", "tab-a")
	if err != nil || conflict != ConflictNone {
		t.Fatalf("expected degraded no-conflict, got %s err=%v", conflict, err)
	}
}

func TestHydrateAfterPersistRoundTrip(t *testing.T) {
	records := newFakeRecordRepo()
	svc := newTestService(records, &fakePointerRepo{})

	snap := entities.SessionSnapshot{
		PlaybackPosition: 42.5,
		AnnotationLines: []entities.AnnotationLine{
			{Points: []entities.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}},
		},
		LayerVisibility:     entities.LayerVisibility{AIDrawings: false, MyNotes: true},
		TranscriptPanelOpen: true,
	}
	if err := svc.Persist(context.Background(), "L1", snap); err != nil {
		t.Fatalf("persist: %v", err)
	}

	record := svc.Hydrate(context.Background(), "L1")
	if record.PlaybackPosition != 42.5 {
		t.Fatalf("expected position 42.5, got %f", record.PlaybackPosition)
	}
	lines := record.AnnotationLines.Data()
	if len(lines) != 1 || len(lines[0].Points) != 2 {
		t.Fatalf("unexpected annotation lines %v", lines)
	}
	vis := record.LayerVisibility.Data()
	if vis.AIDrawings || !vis.MyNotes {
		t.Fatalf("unexpected layer visibility %+v", vis)
	}
	if !record.TranscriptPanelOpen {
		t.Fatal("expected transcript panel open")
	}
}

func TestHydrateMissOrFailureReturnsDefaults(t *testing.T) {
	records := newFakeRecordRepo()
	svc := newTestService(records, &fakePointerRepo{})

	record := svc.Hydrate(context.Background(), "unknown")
	if record.PlaybackPosition != 0 || record.TranscriptPanelOpen {
		t.Fatalf("expected default record, got %+v", record)
	}
	vis := record.LayerVisibility.Data()
	if !vis.AIDrawings || !vis.MyNotes {
		t.Fatalf("expected default visibility, got %+v", vis)
	}

	records.findErr = errors.New("storage down")
	record = svc.Hydrate(context.Background(), "L1")
	if record == nil || record.LessonID != "L1" {
		t.Fatalf("expected defaults on read failure, got %+v", record)
	}
}

func TestClearDeletesRecordAndOwnPointer(t *testing.T) {
	records := newFakeRecordRepo()
	pointer := &fakePointerRepo{}
	svc := newTestService(records, pointer)

	if err := svc.Persist(context.Background(), "L1", entities.SessionSnapshot{}); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if err := svc.Claim(context.Background(), "L1", "tab-a"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if err := svc.Clear(context.Background(), "L1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := records.Find(context.Background(), "L1"); !errors.Is(err, usecaseErrors.ErrSessionRecordNotFound) {
		t.Fatal("expected record deleted")
	}
	if pointer.current() != nil {
		t.Fatal("expected pointer cleared")
	}
}

func TestClearLeavesForeignPointer(t *testing.T) {
	records := newFakeRecordRepo()
	pointer := &fakePointerRepo{}
	svc := newTestService(records, pointer)

	if err := svc.Claim(context.Background(), "L2", "tab-b"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := svc.Clear(context.Background(), "L1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if ptr := pointer.current(); ptr == nil || ptr.LessonID != "L2" {
		t.Fatal("expected pointer for other lesson untouched")
	}
}
